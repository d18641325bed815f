package view

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/storefront/cart/internal/domain/cart"
)

// ProductAttributes are the data attributes of an add-to-cart trigger,
// as read from the page
type ProductAttributes struct {
	ID    string `json:"id" validate:"required,max=128"`
	Name  string `json:"name" validate:"required,max=255"`
	Price string `json:"price" validate:"required,numeric"`
	Image string `json:"image" validate:"omitempty,max=2048"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ToItem validates the attributes and returns a cart item with quantity 1.
// Every failure is an INVALID_PRODUCT domain error naming the first bad field.
func (a ProductAttributes) ToItem() (cart.Item, error) {
	a.ID = strings.TrimSpace(a.ID)
	a.Name = strings.TrimSpace(a.Name)
	a.Price = strings.TrimSpace(a.Price)
	a.Image = strings.TrimSpace(a.Image)

	if err := validate.Struct(a); err != nil {
		return cart.Item{}, cart.NewInvalidProductError(describe(err))
	}

	price, err := decimal.NewFromString(a.Price)
	if err != nil {
		return cart.Item{}, cart.NewInvalidProductError(fmt.Sprintf("price %q is not a number", a.Price))
	}
	return cart.NewItem(a.ID, a.Name, price, cart.DefaultQuantity, a.Image)
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	e := verrs[0]
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return "product " + field + " is required"
	case "numeric":
		return "product " + field + " must be numeric"
	case "max":
		return "product " + field + " must be at most " + e.Param() + " characters"
	default:
		return "product " + field + " is invalid"
	}
}
