package checkoutserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	checkoutapp "github.com/Apurer/go-checkout-api/internal/domains/checkout/application"
	checkoutdomain "github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	checkoutports "github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
	apierrors "github.com/Apurer/go-checkout-api/internal/shared/errors"
)

var serviceResponder = apierrors.NewChainedResponder("", mapCheckoutError)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

// respondError preserves the existing call sites while returning RFC 7807 responses.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound.WithDetail(err.Error())
	case http.StatusConflict:
		problem = apierrors.ErrConflict.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	respondProblem(c, problem)
}

// respondServiceError translates checkout application errors via the chained responder.
func respondServiceError(c *gin.Context, err error) {
	serviceResponder.RespondError(c, err)
}

func mapCheckoutError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, checkoutapp.ErrValidation):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, checkoutapp.ErrPaymentRequired):
		return apierrors.ErrPaymentRequired.WithDetail(err.Error()), true
	case errors.Is(err, checkoutapp.ErrEmptyCart):
		return apierrors.ErrUnprocessable.WithDetail(err.Error()), true
	case errors.Is(err, checkoutapp.ErrUnknownSession),
		errors.Is(err, checkoutapp.ErrNoActiveDraft),
		errors.Is(err, checkoutports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, checkoutapp.ErrSessionCompleted),
		errors.Is(err, checkoutports.ErrConflict),
		errors.Is(err, checkoutdomain.ErrInconsistentDraft):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, checkoutapp.ErrCreateFailed),
		errors.Is(err, checkoutapp.ErrConversionFailed):
		return apierrors.ErrInternal.WithDetail(err.Error()), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}
