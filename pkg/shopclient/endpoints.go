package shopclient

import "net/url"

const (
	PathLogin    = "/api/auth/login"
	PathRegister = "/api/auth/register"
	PathProfile  = "/api/auth/profile"
	PathMe       = "/api/auth/me"

	PathProducts          = "/api/products"
	PathProductCategories = "/api/products/categories"
	PathAdminProducts     = "/api/products/admin/all"

	PathCart       = "/api/cart"
	PathCartAdd    = "/api/cart/add"
	PathCartUpdate = "/api/cart/update"
	PathCartClear  = "/api/cart/clear"

	PathOrders         = "/api/orders"
	PathAdminOrders    = "/api/orders/admin/all"
	PathDeliveryOrders = "/api/orders/delivery/assigned"
	PathDeliveryBoys   = "/api/orders/delivery/boys"
)

func PathProduct(id string) string {
	return PathProducts + "/" + url.PathEscape(id)
}

func PathCartRemove(productID string) string {
	return "/api/cart/remove/" + url.PathEscape(productID)
}

func PathOrderAssign(orderID string) string {
	return PathOrders + "/" + url.PathEscape(orderID) + "/assign"
}

func PathOrderStatus(orderID string) string {
	return PathOrders + "/" + url.PathEscape(orderID) + "/status"
}
