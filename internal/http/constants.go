package http

const (
	HeaderContentType = "Content-Type"
	HeaderValueJson   = "application/json"

	HeaderRequestID = "X-Request-Id"
)

const (
	ProductBaseUrl = "http://product-service:8080/products"
	CartBaseUrl    = "http://cart-service:8080/cart"
	OrderBaseUrl   = "http://order-service:8080/orders"
)
