package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/database"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/database/databasetest"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/service"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/storage"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/validation"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/pkg/logger"
)

type testAPI struct {
	router http.Handler
	db     *database.DB
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	dir := t.TempDir()
	images, err := storage.NewFileStore(dir, "images/meals/")
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	return newTestAPIWithImages(t, images, dir)
}

// newTestAPIWithImages wires the API around the given image store; staticDir is served under /static
func newTestAPIWithImages(t *testing.T, images service.ImageStore, staticDir string) *testAPI {
	t.Helper()

	db := databasetest.New(t)
	v := validation.New()
	log := logger.New("error")

	mealService := service.NewMealService(repository.NewMealRepository(db.Gorm), images, v)
	orderService := service.NewOrderService(repository.NewOrderRepository(db.Gorm), v)

	return &testAPI{
		router: NewRouter(RouterConfig{
			Meals:          NewMealHandler(mealService, log),
			Orders:         NewOrderHandler(orderService, log),
			Health:         NewHealthHandler(db, log),
			StaticDir:      staticDir,
			StaticMount:    "/static",
			AllowedOrigins: []string{"*"},
			Logger:         log,
		}),
		db: db,
	}
}

// do sends body as JSON unless it is already a string
func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) upload(t *testing.T, path, field, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create multipart part: %v", err)
	}
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}
