package constants

const (
	AppMain           = "jewelify"
	AppCartService    = "cart-service"
	AppProductService = "product-service"
	AppUserService    = "user-service"
	AppOrderService   = "order-service"
	AudienceUser      = "jewelify-user"
)
