package kvstore

import (
	"fmt"

	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
)

// Key schema. Per-user aggregates are partitioned by user id so a session
// switch can never surface another account's data.

const usersKey = "users"

func SessionKey(userID string) string {
	return fmt.Sprintf("session:%s", userID)
}

func CartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

func WishlistKey(userID string) string {
	return fmt.Sprintf("wishlist:%s", userID)
}

// OrdersKey is partitioned by email because upstream order records carry
// the customer email, not the local account id.
func OrdersKey(userEmail string) string {
	return fmt.Sprintf("orders:%s", userEmail)
}

// OrdersPrefix matches every per-user orders list.
func OrdersPrefix() string {
	return "orders:"
}

func UsersKey() string {
	return usersKey
}

func ProductsKey(category enums.Category) string {
	return fmt.Sprintf("products:%s", category)
}
