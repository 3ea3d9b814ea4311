package checkoutserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route binds an HTTP verb and path pattern to a handler.
type Route struct {
	Method      string
	Pattern     string
	HandlerFunc gin.HandlerFunc
}

// Routes is the list of the server routes.
type Routes []Route

// ApiHandleFunctions holds the API handler groups served by the router.
type ApiHandleFunctions struct {
	CheckoutAPI CheckoutAPI
}

// NewRouter returns a new gin router with all registered routes.
func NewRouter(handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.Default()
	router.Use(middleware...)
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = defaultHandler
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			router.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
	return router
}

func defaultHandler(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"status": "not implemented"})
}

func getRoutes(handleFunctions ApiHandleFunctions) Routes {
	return Routes{
		{
			http.MethodPost,
			"/v1/checkout/:sessionId",
			handleFunctions.CheckoutAPI.StartCheckout,
		},
		{
			http.MethodGet,
			"/v1/checkout/:sessionId",
			handleFunctions.CheckoutAPI.GetSession,
		},
		{
			http.MethodGet,
			"/v1/checkout/:sessionId/addresses",
			handleFunctions.CheckoutAPI.ListSavedAddresses,
		},
		{
			http.MethodDelete,
			"/v1/checkout/:sessionId/addresses/:addressId",
			handleFunctions.CheckoutAPI.ForgetSavedAddress,
		},
		{
			http.MethodPut,
			"/v1/checkout/:sessionId/address",
			handleFunctions.CheckoutAPI.SetAddress,
		},
		{
			http.MethodPut,
			"/v1/checkout/:sessionId/shipping",
			handleFunctions.CheckoutAPI.SetShipping,
		},
		{
			http.MethodPut,
			"/v1/checkout/:sessionId/payment-method",
			handleFunctions.CheckoutAPI.SetPaymentMethod,
		},
		{
			http.MethodPost,
			"/v1/checkout/:sessionId/card",
			handleFunctions.CheckoutAPI.SubmitCard,
		},
		{
			http.MethodPost,
			"/v1/checkout/:sessionId/advance",
			handleFunctions.CheckoutAPI.Advance,
		},
		{
			http.MethodPost,
			"/v1/checkout/:sessionId/back",
			handleFunctions.CheckoutAPI.Retreat,
		},
		{
			http.MethodPost,
			"/v1/checkout/:sessionId/step",
			handleFunctions.CheckoutAPI.GoToStep,
		},
		{
			http.MethodPost,
			"/v1/checkout/:sessionId/payment/complete",
			handleFunctions.CheckoutAPI.CompletePayment,
		},
		{
			http.MethodPost,
			"/v1/checkout/:sessionId/payment/fail",
			handleFunctions.CheckoutAPI.FailPayment,
		},
		{
			http.MethodPost,
			"/v1/checkout/:sessionId/payment/cancel",
			handleFunctions.CheckoutAPI.CancelPayment,
		},
		{
			http.MethodPost,
			"/v1/checkout/:sessionId/order",
			handleFunctions.CheckoutAPI.PlaceOrder,
		},
	}
}
