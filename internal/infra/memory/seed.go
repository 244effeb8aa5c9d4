package memory

import (
	"gin-checkout-core/internal/domain/user"
	"gin-checkout-core/internal/pkg/password"

	"github.com/shopspring/decimal"
)

const DemoPassword = "password123"

type demoProduct struct {
	name     string
	price    string
	discount string
	stock    int
}

var demoProducts = []demoProduct{
	{name: "Fone Bluetooth", price: "199.90", discount: "10", stock: 25},
	{name: "Teclado Mecânico", price: "349.00", discount: "0", stock: 10},
	{name: "Cabo USB-C", price: "29.90", discount: "15", stock: 200},
}

var demoUsers = []struct {
	name  string
	email string
	role  user.Role
}{
	{name: "Maria Silva", email: "buyer@example.com", role: user.RoleCustomer},
	{name: "Operador", email: "operator@example.com", role: user.RoleOperator},
}

// SeedDemo loads a small catalog and login-able users so the service is usable
// without a database.
func SeedDemo(store *Store) error {
	hash, err := password.Hash(DemoPassword)
	if err != nil {
		return err
	}
	for _, du := range demoUsers {
		email, err := user.NewEmail(du.email)
		if err != nil {
			return err
		}
		u, err := user.NewUser(du.name, email, hash, du.role)
		if err != nil {
			return err
		}
		store.SeedUser(u)
	}
	for _, p := range demoProducts {
		store.SeedProduct(p.name, decimal.RequireFromString(p.price), decimal.RequireFromString(p.discount), p.stock)
	}
	return nil
}
