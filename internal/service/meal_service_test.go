package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/database/databasetest"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/storage"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/validation"
)

// brokenStore fails every delete
type brokenStore struct {
	ImageStore
}

func (brokenStore) Delete(string) error {
	return errors.New("disk on fire")
}

func newMealService(t *testing.T) (*MealService, string) {
	t.Helper()
	dir := t.TempDir()
	images, err := storage.NewFileStore(dir, "images/meals/")
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	repo := repository.NewMealRepository(databasetest.New(t).Gorm)
	return NewMealService(repo, images, validation.New()), dir
}

func TestMealService_CreateMeal(t *testing.T) {
	svc, _ := newMealService(t)
	ctx := context.Background()

	meal, err := svc.CreateMeal(ctx, models.CreateMealRequest{Name: "  Pizza  ", Price: 9.999})
	if err != nil {
		t.Fatalf("CreateMeal() unexpected error = %v", err)
	}
	if meal.Name != "Pizza" {
		t.Errorf("CreateMeal() name = %q, want trimmed Pizza", meal.Name)
	}
	if !meal.Price.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("CreateMeal() price = %s, want 10.00", meal.Price)
	}

	tests := []struct {
		name string
		req  models.CreateMealRequest
		want func(error) bool
	}{
		{
			name: "duplicate name",
			req:  models.CreateMealRequest{Name: "Pizza", Price: 1},
			want: func(err error) bool { return errors.Is(err, repository.ErrDuplicateName) },
		},
		{
			name: "blank name",
			req:  models.CreateMealRequest{Name: "   ", Price: 1},
			want: func(err error) bool { var v validation.ValidationError; return errors.As(err, &v) },
		},
		{
			name: "non-positive price",
			req:  models.CreateMealRequest{Name: "Soup", Price: -1},
			want: func(err error) bool { var v validation.ValidationError; return errors.As(err, &v) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateMeal(ctx, tt.req)
			if !tt.want(err) {
				t.Errorf("CreateMeal() error = %v", err)
			}
		})
	}
}

func TestMealService_UpdateMeal(t *testing.T) {
	svc, _ := newMealService(t)
	ctx := context.Background()

	pizza, err := svc.CreateMeal(ctx, models.CreateMealRequest{Name: "Pizza", Price: 9.99})
	if err != nil {
		t.Fatalf("CreateMeal() unexpected error = %v", err)
	}

	_, err = svc.UpdateMeal(ctx, models.UpdateMealRequest{ID: uuid.New(), Name: "Ghost", Price: 1})
	if !errors.Is(err, repository.ErrMealNotFound) {
		t.Errorf("UpdateMeal() unknown id error = %v, want ErrMealNotFound", err)
	}
	meals, _ := svc.ListMeals(ctx)
	if len(meals) != 1 {
		t.Errorf("UpdateMeal() of unknown id created a meal, have %d", len(meals))
	}

	updated, err := svc.UpdateMeal(ctx, models.UpdateMealRequest{ID: pizza.ID, Name: "Pizza", Price: 12.5})
	if err != nil {
		t.Fatalf("UpdateMeal() unexpected error = %v", err)
	}
	if !updated.Price.Equal(decimal.RequireFromString("12.50")) {
		t.Errorf("UpdateMeal() price = %s, want 12.50", updated.Price)
	}
}

func TestMealService_UploadAndDelete(t *testing.T) {
	svc, dir := newMealService(t)
	ctx := context.Background()

	meal, err := svc.CreateMeal(ctx, models.CreateMealRequest{Name: "Pizza", Price: 9.99})
	if err != nil {
		t.Fatalf("CreateMeal() unexpected error = %v", err)
	}

	_, err = svc.UploadImage(ctx, meal.ID, "text/plain", "notes.txt", strings.NewReader("hi"))
	if !errors.Is(err, ErrInvalidContentType) {
		t.Errorf("UploadImage() text error = %v, want ErrInvalidContentType", err)
	}

	_, err = svc.UploadImage(ctx, uuid.New(), "image/png", "p.png", strings.NewReader("png"))
	if !errors.Is(err, repository.ErrMealNotFound) {
		t.Errorf("UploadImage() unknown meal error = %v, want ErrMealNotFound", err)
	}

	uploaded, err := svc.UploadImage(ctx, meal.ID, "image/png", "pizza.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("UploadImage() unexpected error = %v", err)
	}
	wantName := "images/meals/" + meal.ID.String() + ".png"
	if uploaded.Image == nil || *uploaded.Image != wantName {
		t.Fatalf("UploadImage() image = %v, want %s", uploaded.Image, wantName)
	}
	path := filepath.Join(dir, filepath.FromSlash(wantName))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("uploaded file missing: %v", err)
	}

	if err := svc.DeleteMeal(ctx, meal.ID); err != nil {
		t.Fatalf("DeleteMeal() unexpected error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("DeleteMeal() left the image file behind")
	}
	if _, err := svc.GetMeal(ctx, meal.ID); !errors.Is(err, repository.ErrMealNotFound) {
		t.Errorf("GetMeal() after delete error = %v, want ErrMealNotFound", err)
	}
	if err := svc.DeleteMeal(ctx, meal.ID); !errors.Is(err, repository.ErrMealNotFound) {
		t.Errorf("second DeleteMeal() error = %v, want ErrMealNotFound", err)
	}
}

func TestMealService_DeleteImageFailure(t *testing.T) {
	repo := repository.NewMealRepository(databasetest.New(t).Gorm)
	svc := NewMealService(repo, brokenStore{}, validation.New())
	ctx := context.Background()

	meal, err := svc.CreateMeal(ctx, models.CreateMealRequest{Name: "Pizza", Price: 9.99})
	if err != nil {
		t.Fatalf("CreateMeal() unexpected error = %v", err)
	}
	if _, err := repo.SetImage(ctx, meal.ID, "images/meals/pizza.png"); err != nil {
		t.Fatalf("SetImage() unexpected error = %v", err)
	}

	err = svc.DeleteMeal(ctx, meal.ID)
	var delErr *DeleteError
	if !errors.As(err, &delErr) {
		t.Fatalf("DeleteMeal() error = %v, want *DeleteError", err)
	}
	if !strings.Contains(err.Error(), "disk on fire") || !strings.Contains(err.Error(), meal.ID.String()) {
		t.Errorf("DeleteMeal() message = %q", err.Error())
	}
}
