package checkoutserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	checkouthttpmapper "github.com/Apurer/go-checkout-api/internal/domains/checkout/adapters/http/mapper"
	checkouttypes "github.com/Apurer/go-checkout-api/internal/domains/checkout/application/types"
	checkoutdomain "github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	checkoutports "github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
	apierrors "github.com/Apurer/go-checkout-api/internal/shared/errors"
)

// CheckoutAPI wires HTTP transport with the checkout bounded context service.
type CheckoutAPI struct {
	service checkoutports.Service
}

// NewCheckoutAPI creates a CheckoutAPI backed by the provided service.
func NewCheckoutAPI(service checkoutports.Service) CheckoutAPI {
	return CheckoutAPI{service: service}
}

func sessionIDParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("sessionId"))
	if id == "" {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail("sessionId is required"))
		return "", false
	}
	return id, true
}

// Post /v1/checkout/:sessionId
// Enter or rehydrate a checkout session
func (api *CheckoutAPI) StartCheckout(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	view, err := api.service.StartCheckout(c.Request.Context(), checkouttypes.StartCheckoutInput{SessionID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkouthttpmapper.FromSessionView(view))
}

// Get /v1/checkout/:sessionId
// Current session projection
func (api *CheckoutAPI) GetSession(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	view, err := api.service.GetSession(c.Request.Context(), checkouttypes.SessionIdentifier{SessionID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkouthttpmapper.FromSessionView(view))
}

// Get /v1/checkout/:sessionId/addresses
// Saved addresses for address form prefill
func (api *CheckoutAPI) ListSavedAddresses(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	saved, err := api.service.SavedAddresses(c.Request.Context(), checkouttypes.SessionIdentifier{SessionID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkouthttpmapper.FromSavedAddresses(saved))
}

// Delete /v1/checkout/:sessionId/addresses/:addressId
// Remove a saved address
func (api *CheckoutAPI) ForgetSavedAddress(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	addressID, err := strconv.ParseInt(c.Param("addressId"), 10, 64)
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail("addressId must be an integer"))
		return
	}
	if err := api.service.ForgetAddress(c.Request.Context(), checkouttypes.ForgetAddressInput{
		SessionID: id,
		AddressID: addressID,
	}); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Put /v1/checkout/:sessionId/address
// Store address form input
func (api *CheckoutAPI) SetAddress(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var payload checkouthttpmapper.AddressForm
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	view, err := api.service.SetAddress(c.Request.Context(), checkouttypes.SetAddressInput{
		SessionID: id,
		Form:      checkouthttpmapper.ToAddressForm(payload),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkouthttpmapper.FromSessionView(view))
}

// Put /v1/checkout/:sessionId/shipping
// Record the chosen delivery option
func (api *CheckoutAPI) SetShipping(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var payload checkouthttpmapper.Shipping
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	view, err := api.service.SetShipping(c.Request.Context(), checkouttypes.SetShippingInput{
		SessionID: id,
		MethodID:  payload.MethodID,
		Cost:      payload.Cost,
		Tax:       payload.Tax,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkouthttpmapper.FromSessionView(view))
}

// Put /v1/checkout/:sessionId/payment-method
// Select the payment instrument
func (api *CheckoutAPI) SetPaymentMethod(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var payload checkouthttpmapper.PaymentMethod
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	view, err := api.service.SetPaymentMethod(c.Request.Context(), checkouttypes.SetPaymentMethodInput{
		SessionID: id,
		Method:    checkoutdomain.PaymentMethod(payload.Method),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkouthttpmapper.FromSessionView(view))
}

// Post /v1/checkout/:sessionId/card
// Submit card details for capture
func (api *CheckoutAPI) SubmitCard(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var payload checkouthttpmapper.Card
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	view, err := api.service.SubmitCard(c.Request.Context(), checkouttypes.SubmitCardInput{
		SessionID: id,
		Card:      checkouthttpmapper.ToCardForm(payload),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkouthttpmapper.FromSessionView(view))
}

// Post /v1/checkout/:sessionId/advance
// Validate the current step and move forward
func (api *CheckoutAPI) Advance(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	view, err := api.service.Advance(c.Request.Context(), checkouttypes.SessionIdentifier{SessionID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkouthttpmapper.FromSessionView(view))
}

// Post /v1/checkout/:sessionId/back
// Move back one step
func (api *CheckoutAPI) Retreat(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	view, err := api.service.Retreat(c.Request.Context(), checkouttypes.SessionIdentifier{SessionID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkouthttpmapper.FromSessionView(view))
}

// Post /v1/checkout/:sessionId/step
// Jump to an earlier step for edits
func (api *CheckoutAPI) GoToStep(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var payload checkouthttpmapper.StepTarget
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	view, err := api.service.GoTo(c.Request.Context(), checkouttypes.GoToStepInput{SessionID: id, Step: payload.Step})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkouthttpmapper.FromSessionView(view))
}

// Post /v1/checkout/:sessionId/payment/complete
// Provider approve callback
func (api *CheckoutAPI) CompletePayment(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var payload checkouthttpmapper.PaymentCallback
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	view, err := api.service.CompletePayment(c.Request.Context(), checkouthttpmapper.ToPaymentCallbackInput(id, payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkouthttpmapper.FromSessionView(view))
}

// Post /v1/checkout/:sessionId/payment/fail
// Provider error callback
func (api *CheckoutAPI) FailPayment(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var payload checkouthttpmapper.PaymentFailure
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	view, err := api.service.FailPayment(c.Request.Context(), checkouttypes.PaymentFailureInput{
		SessionID: id,
		Provider:  payload.Provider,
		Message:   payload.Message,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkouthttpmapper.FromSessionView(view))
}

// Post /v1/checkout/:sessionId/payment/cancel
// Shopper cancelled the provider flow
func (api *CheckoutAPI) CancelPayment(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	view, err := api.service.CancelPayment(c.Request.Context(), checkouttypes.SessionIdentifier{SessionID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkouthttpmapper.FromSessionView(view))
}

// Post /v1/checkout/:sessionId/order
// Finalize the draft into an immutable order
func (api *CheckoutAPI) PlaceOrder(c *gin.Context) {
	id, ok := sessionIDParam(c)
	if !ok {
		return
	}
	confirmation, err := api.service.PlaceOrder(c.Request.Context(), checkouttypes.SessionIdentifier{SessionID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, checkouthttpmapper.FromConfirmation(confirmation))
}
