package log

const (
	KeyAppName       = "app"
	KeyRequestID     = "requestId"
	KeyProcess       = "process"
	KeyTag           = "tag"
	KeyConfig        = "config"
	KeyToken         = "token"
	KeyEmail         = "email"
	KeyUserID        = "userId"
	KeyProductID     = "productId"
	KeyOrderID       = "orderId"
	KeyCart          = "cart"
	KeyCartItems     = "cartItems"
	KeyQuantity      = "quantity"
	KeyCacheKey      = "cacheKey"
	KeyDbURL         = "dbUrl"
	KeyRequest       = "request"
	KeyBody          = "body"
	KeyHeader        = "header"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyPathValues    = "pathValues"
)
