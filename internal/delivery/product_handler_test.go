package delivery

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"catalog_service/internal/repository"
	"catalog_service/internal/storage"
	"catalog_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type productJSON struct {
	ID             int     `json:"id"`
	Title          string  `json:"title"`
	Image          string  `json:"image"`
	SellerFullName string  `json:"seller_full_name"`
	Price          string  `json:"price"`
	Rating         float64 `json:"rating"`
}

type fieldErrorsBody struct {
	Detail []struct {
		Loc  []string `json:"loc"`
		Msg  string   `json:"msg"`
		Type string   `json:"type"`
	} `json:"detail"`
}

type detailBody struct {
	Detail string `json:"detail"`
}

func newTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	root := t.TempDir()
	repo := repository.NewInMemoryProductRepository(false)
	uc := usecase.NewProductUseCase(repo, storage.NewDiskFileStore(root, logger), logger)
	handler := NewProductHandler(uc, logger)

	router := gin.New()
	v1 := router.Group("/api/v1")
	handler.RegisterRoutes(v1)
	return router, root
}

func productForm(t *testing.T, fields map[string]string, imageName string, imageContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("writing field %q failed: %v", k, err)
		}
	}
	if imageName != "" {
		part, err := writer.CreateFormFile("image", imageName)
		if err != nil {
			t.Fatalf("creating image part failed: %v", err)
		}
		if _, err := part.Write(imageContent); err != nil {
			t.Fatalf("writing image part failed: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer failed: %v", err)
	}
	return body, writer.FormDataContentType()
}

func doRequest(router *gin.Engine, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createProduct(t *testing.T, router *gin.Engine, title string) productJSON {
	t.Helper()
	body, contentType := productForm(t, map[string]string{
		"title":            title,
		"seller_full_name": "Ana Prado",
		"price":            "25.99",
		"rating":           "4.75",
	}, "foto.jpg", []byte("0123456789"))

	w := doRequest(router, http.MethodPost, "/api/v1/products/", body, contentType)
	if w.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", w.Code, w.Body.String())
	}
	var created productJSON
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding create response failed: %v", err)
	}
	return created
}

func errorFields(body fieldErrorsBody) map[string]bool {
	fields := map[string]bool{}
	for _, fe := range body.Detail {
		if len(fe.Loc) > 0 {
			fields[fe.Loc[len(fe.Loc)-1]] = true
		}
	}
	return fields
}

func TestCreateProductReturns201(t *testing.T) {
	router, _ := newTestRouter(t)

	created := createProduct(t, router, "Producto X")

	if created.ID == 0 {
		t.Error("expected a generated id")
	}
	if created.Price != "25.99" {
		t.Errorf("expected price \"25.99\", got %q", created.Price)
	}
	if created.Rating != 4.75 {
		t.Errorf("expected rating 4.75, got %v", created.Rating)
	}
	if !strings.HasSuffix(created.Image, ".jpg") {
		t.Errorf("expected image path ending in .jpg, got %q", created.Image)
	}
	info, err := os.Stat(filepath.FromSlash(created.Image))
	if err != nil {
		t.Fatalf("image file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("image file is empty")
	}
}

func TestCreateProductZeroByteImage(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := productForm(t, map[string]string{
		"title":            "Producto X",
		"seller_full_name": "Ana Prado",
		"price":            "25.99",
		"rating":           "4.75",
	}, "vacia.jpg", nil)

	w := doRequest(router, http.MethodPost, "/api/v1/products/", body, contentType)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	var resp detailBody
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Detail != MsgCreateFailed {
		t.Errorf("unexpected detail %q", resp.Detail)
	}

	// Nothing should have been persisted.
	w = doRequest(router, http.MethodGet, "/api/v1/products/", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list returned %d", w.Code)
	}
	var products []productJSON
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatalf("decoding list failed: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("expected no rows, got %d", len(products))
	}
}

func TestCreateProductMissingFields(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := productForm(t, nil, "", nil)
	w := doRequest(router, http.MethodPost, "/api/v1/products/", body, contentType)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}

	var resp fieldErrorsBody
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	fields := errorFields(resp)
	for _, want := range []string{"title", "seller_full_name", "price", "rating", "image"} {
		if !fields[want] {
			t.Errorf("expected %q among invalid fields, got %v", want, fields)
		}
	}
}

func TestCreateProductRejectsBadPriceAndRating(t *testing.T) {
	cases := []struct {
		name   string
		price  string
		rating string
	}{
		{"price is not a decimal", "abc", "4.5"},
		{"price has too many decimal places", "12.999", "4.5"},
		{"price is negative", "-1.00", "4.5"},
		{"price exceeds four whole digits", "10000", "4.5"},
		{"rating is not a number", "25.99", "xyz"},
		{"rating above five", "25.99", "5.5"},
		{"rating below zero", "25.99", "-0.5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := newTestRouter(t)
			body, contentType := productForm(t, map[string]string{
				"title":            "Producto X",
				"seller_full_name": "Ana Prado",
				"price":            tc.price,
				"rating":           tc.rating,
			}, "foto.jpg", []byte("0123456789"))

			w := doRequest(router, http.MethodPost, "/api/v1/products/", body, contentType)
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGetProductByID(t *testing.T) {
	router, _ := newTestRouter(t)
	created := createProduct(t, router, "Producto X")

	w := doRequest(router, http.MethodGet, "/api/v1/products/1", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got productJSON
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if got.ID != created.ID || got.Title != "Producto X" {
		t.Errorf("unexpected product: %+v", got)
	}
}

func TestGetProductNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/products/999", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var resp detailBody
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Detail != MsgProductNotFound {
		t.Errorf("expected detail %q, got %q", MsgProductNotFound, resp.Detail)
	}
}

func TestGetProductNonIntegerID(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/products/abc", nil, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var resp fieldErrorsBody
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if !errorFields(resp)["id"] {
		t.Errorf("expected id among invalid fields, got %v", resp.Detail)
	}
}

func TestListProductsInvalidQueryParams(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/products/?page=abc&limit-per-page=xyz", nil, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	var resp fieldErrorsBody
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	fields := errorFields(resp)
	if !fields["page"] || !fields["limit-per-page"] {
		t.Errorf("expected page and limit-per-page among invalid fields, got %v", fields)
	}
}

func TestListProductsRejectsNonPositiveLimit(t *testing.T) {
	router, _ := newTestRouter(t)
	for _, limit := range []string{"0", "-3"} {
		w := doRequest(router, http.MethodGet, "/api/v1/products/?limit-per-page="+limit, nil, "")
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("limit-per-page=%s: expected 422, got %d", limit, w.Code)
		}
	}
}

func TestListProductsTitleFilter(t *testing.T) {
	router, _ := newTestRouter(t)
	createProduct(t, router, "Producto X")
	createProduct(t, router, "Producto Y")
	createProduct(t, router, "Otro")

	w := doRequest(router, http.MethodGet, "/api/v1/products/?title=producto", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var products []productJSON
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatalf("decoding list failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Title != "Producto X" || products[1].Title != "Producto Y" {
		t.Errorf("unexpected titles: %q, %q", products[0].Title, products[1].Title)
	}
}

func TestListProductsEmptyIsNotAnError(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/products/", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected empty array body, got %q", w.Body.String())
	}
}

func TestUpdateProductOnlyTitle(t *testing.T) {
	router, _ := newTestRouter(t)
	created := createProduct(t, router, "Producto X")

	body, contentType := productForm(t, map[string]string{"title": "Producto Renombrado"}, "", nil)
	w := doRequest(router, http.MethodPatch, "/api/v1/products/1", body, contentType)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated productJSON
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if updated.Title != "Producto Renombrado" {
		t.Errorf("title not updated: %q", updated.Title)
	}
	if updated.Image != created.Image || updated.SellerFullName != created.SellerFullName ||
		updated.Price != created.Price || updated.Rating != created.Rating {
		t.Errorf("unrelated fields changed: %+v vs %+v", updated, created)
	}
}

func TestUpdateProductInvalidNumbers(t *testing.T) {
	router, _ := newTestRouter(t)
	createProduct(t, router, "Producto X")

	body, contentType := productForm(t, map[string]string{"price": "no-es-un-precio"}, "", nil)
	w := doRequest(router, http.MethodPatch, "/api/v1/products/1", body, contentType)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad price, got %d", w.Code)
	}
	var resp detailBody
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Detail != MsgInvalidPrice {
		t.Errorf("expected detail %q, got %q", MsgInvalidPrice, resp.Detail)
	}

	body, contentType = productForm(t, map[string]string{"rating": "7"}, "", nil)
	w = doRequest(router, http.MethodPatch, "/api/v1/products/1", body, contentType)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad rating, got %d", w.Code)
	}
}

func TestUpdateProductNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := productForm(t, map[string]string{"title": "X"}, "", nil)
	w := doRequest(router, http.MethodPatch, "/api/v1/products/999", body, contentType)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestUpdateProductReplacesImage(t *testing.T) {
	router, _ := newTestRouter(t)
	created := createProduct(t, router, "Producto X")

	body, contentType := productForm(t, nil, "nueva.png", []byte("new bytes"))
	w := doRequest(router, http.MethodPatch, "/api/v1/products/1", body, contentType)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated productJSON
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if updated.Image == created.Image {
		t.Error("image path did not change")
	}
	if !strings.HasSuffix(updated.Image, ".png") {
		t.Errorf("expected .png extension, got %q", updated.Image)
	}
	if _, err := os.Stat(filepath.FromSlash(created.Image)); !os.IsNotExist(err) {
		t.Errorf("old image %q should be deleted", created.Image)
	}
}

func TestDeleteProduct(t *testing.T) {
	router, root := newTestRouter(t)
	createProduct(t, router, "Producto X")

	w := doRequest(router, http.MethodDelete, "/api/v1/products/1", nil, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}

	w = doRequest(router, http.MethodGet, "/api/v1/products/1", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}

	entries, err := os.ReadDir(filepath.Join(root, usecase.ImageUploadFolder))
	if err == nil && len(entries) != 0 {
		t.Errorf("expected image directory emptied, found %d entries", len(entries))
	}
}

func TestDeleteProductNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodDelete, "/api/v1/products/999", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
