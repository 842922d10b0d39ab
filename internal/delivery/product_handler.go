package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"catalog_service/internal/domain"
	"catalog_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Price limits matching the NUMERIC(6,2) column: up to four digits before the
// decimal point and two after.
var maxPriceExclusive = decimal.New(1, 4) // 10000

type ProductHandler struct {
	useCase usecase.ProductUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter) {
	products := router.Group("/products")
	{
		products.POST("/", h.CreateProduct)
		products.GET("/", h.ListProducts)
		products.GET("/:id", h.GetProductByID)
		products.PATCH("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

func parsePrice(raw string) (decimal.Decimal, *FieldError) {
	loc := []string{"body", "price"}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &FieldError{Loc: loc, Msg: "value is not a valid decimal", Type: "decimal_parsing"}
	}
	if price.IsNegative() {
		return decimal.Zero, &FieldError{Loc: loc, Msg: "ensure this value is greater than or equal to 0", Type: "greater_than_equal"}
	}
	if price.Exponent() < -2 {
		return decimal.Zero, &FieldError{Loc: loc, Msg: "ensure that there are no more than 2 decimal places", Type: "decimal_max_places"}
	}
	if price.GreaterThanOrEqual(maxPriceExclusive) {
		return decimal.Zero, &FieldError{Loc: loc, Msg: "ensure that there are no more than 4 digits before the decimal point", Type: "decimal_whole_digits"}
	}
	return price, nil
}

func parseRating(raw string) (float64, *FieldError) {
	loc := []string{"body", "rating"}
	rating, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &FieldError{Loc: loc, Msg: "value is not a valid number", Type: "float_parsing"}
	}
	if rating < 0 || rating > 5 {
		return 0, &FieldError{Loc: loc, Msg: "ensure this value is between 0 and 5", Type: "range"}
	}
	return rating, nil
}

func parsePathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fieldErrorsResponse(c, []FieldError{{
			Loc:  []string{"path", "id"},
			Msg:  "value is not a valid integer",
			Type: "int_parsing",
		}})
		return 0, false
	}
	return id, true
}

// CreateProduct handles POST /api/v1/products/. The request is a multipart
// form with title, seller_full_name, price, rating and an image file part.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var errs []FieldError

	title := c.PostForm("title")
	if title == "" {
		errs = append(errs, FieldError{Loc: []string{"body", "title"}, Msg: "field required", Type: "missing"})
	}
	seller := c.PostForm("seller_full_name")
	if seller == "" {
		errs = append(errs, FieldError{Loc: []string{"body", "seller_full_name"}, Msg: "field required", Type: "missing"})
	}

	var price decimal.Decimal
	if raw, ok := c.GetPostForm("price"); !ok || raw == "" {
		errs = append(errs, FieldError{Loc: []string{"body", "price"}, Msg: "field required", Type: "missing"})
	} else if parsed, ferr := parsePrice(raw); ferr != nil {
		errs = append(errs, *ferr)
	} else {
		price = parsed
	}

	var rating float64
	if raw, ok := c.GetPostForm("rating"); !ok || raw == "" {
		errs = append(errs, FieldError{Loc: []string{"body", "rating"}, Msg: "field required", Type: "missing"})
	} else if parsed, ferr := parseRating(raw); ferr != nil {
		errs = append(errs, *ferr)
	} else {
		rating = parsed
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		errs = append(errs, FieldError{Loc: []string{"body", "image"}, Msg: "field required", Type: "missing"})
	}

	if len(errs) > 0 {
		h.log.Warnf("Rejected product creation with %d invalid fields", len(errs))
		fieldErrorsResponse(c, errs)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.log.Errorf("Failed to open uploaded image %q: %v", fileHeader.Filename, err)
		detailResponse(c, http.StatusInternalServerError, MsgInternalError)
		return
	}
	defer file.Close()

	product, err := h.useCase.CreateProduct(usecase.CreateProductInput{
		Title:          title,
		SellerFullName: seller,
		Price:          price,
		Rating:         rating,
		Image: domain.ImageFile{
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			Content:  file,
		},
	})
	if err != nil {
		h.log.Errorf("Failed to create product '%s': %v", title, err)
		if mapErrorToStatus(err) == http.StatusBadRequest {
			detailResponse(c, http.StatusBadRequest, MsgCreateFailed)
			return
		}
		detailResponse(c, http.StatusInternalServerError, MsgInternalError)
		return
	}

	h.log.Infof("Product created successfully: ID %d, Title %s", product.ID, product.Title)
	c.JSON(http.StatusCreated, product)
}

// ListProducts handles GET /api/v1/products/ with optional title filter and
// page / limit-per-page query parameters.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var errs []FieldError

	page := 0
	if raw, ok := c.GetQuery("page"); ok && raw != "" {
		v, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs = append(errs, FieldError{Loc: []string{"query", "page"}, Msg: "value is not a valid integer", Type: "int_parsing"})
		case v < 0:
			errs = append(errs, FieldError{Loc: []string{"query", "page"}, Msg: "ensure this value is greater than or equal to 0", Type: "greater_than_equal"})
		default:
			page = v
		}
	}

	limitPerPage := 10
	if raw, ok := c.GetQuery("limit-per-page"); ok && raw != "" {
		v, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs = append(errs, FieldError{Loc: []string{"query", "limit-per-page"}, Msg: "value is not a valid integer", Type: "int_parsing"})
		case v <= 0:
			errs = append(errs, FieldError{Loc: []string{"query", "limit-per-page"}, Msg: "ensure this value is greater than 0", Type: "greater_than"})
		default:
			limitPerPage = v
		}
	}

	if len(errs) > 0 {
		fieldErrorsResponse(c, errs)
		return
	}

	products, err := h.useCase.ListProducts(c.Query("title"), page, limitPerPage)
	if err != nil {
		h.log.Errorf("Failed to list products: %v", err)
		detailResponse(c, http.StatusInternalServerError, MsgInternalError)
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, ok := parsePathID(c)
	if !ok {
		return
	}

	product, err := h.useCase.GetProduct(id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			detailResponse(c, http.StatusNotFound, MsgProductNotFound)
			return
		}
		h.log.Errorf("Failed to get product by ID %d: %v", id, err)
		detailResponse(c, http.StatusInternalServerError, MsgInternalError)
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateProduct handles PATCH /api/v1/products/:id. All form fields are
// optional; only supplied, non-empty values replace the stored ones.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parsePathID(c)
	if !ok {
		return
	}

	var in usecase.UpdateProductInput

	if raw, ok := c.GetPostForm("title"); ok {
		in.Title = &raw
	}
	if raw, ok := c.GetPostForm("seller_full_name"); ok {
		in.SellerFullName = &raw
	}
	if raw, ok := c.GetPostForm("price"); ok && raw != "" {
		price, ferr := parsePrice(raw)
		if ferr != nil {
			h.log.Warnf("Rejected product update ID %d: invalid price %q", id, raw)
			detailResponse(c, http.StatusBadRequest, MsgInvalidPrice)
			return
		}
		in.Price = &price
	}
	if raw, ok := c.GetPostForm("rating"); ok && raw != "" {
		rating, ferr := parseRating(raw)
		if ferr != nil {
			h.log.Warnf("Rejected product update ID %d: invalid rating %q", id, raw)
			detailResponse(c, http.StatusBadRequest, MsgInvalidRating)
			return
		}
		in.Rating = &rating
	}
	if fileHeader, err := c.FormFile("image"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			h.log.Errorf("Failed to open uploaded image %q: %v", fileHeader.Filename, err)
			detailResponse(c, http.StatusInternalServerError, MsgInternalError)
			return
		}
		defer file.Close()
		in.Image = &domain.ImageFile{
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			Content:  file,
		}
	}

	updated, err := h.useCase.UpdateProduct(id, in)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			detailResponse(c, http.StatusNotFound, MsgProductNotFound)
			return
		}
		h.log.Errorf("Failed to update product ID %d: %v", id, err)
		detailResponse(c, http.StatusInternalServerError, MsgInternalError)
		return
	}

	h.log.Infof("Product updated successfully: ID %d", updated.ID)
	c.JSON(http.StatusOK, updated)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parsePathID(c)
	if !ok {
		return
	}

	if err := h.useCase.DeleteProduct(id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			detailResponse(c, http.StatusNotFound, MsgProductNotFound)
			return
		}
		h.log.Errorf("Failed to delete product ID %d: %v", id, err)
		detailResponse(c, http.StatusInternalServerError, MsgInternalError)
		return
	}

	h.log.Infof("Product deleted successfully: ID %d", id)
	c.Status(http.StatusNoContent)
}
