// bidding-admin seeds the store with products and users.
//
//	bidding-admin create-product --name "Vintage lamp" --price 120
//	bidding-admin create-user --username alice --email alice@example.com --password secret
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"bidding-system/internal/config"
	"bidding-system/internal/domain"
	"bidding-system/internal/domain/repositories"
	"bidding-system/internal/infrastructure/mysql"
	"bidding-system/internal/security"
	"bidding-system/pkg/utils"

	"github.com/spf13/pflag"
)

const usage = `usage: bidding-admin <command> [flags]

commands:
  create-product  --name NAME --price PRICE
  create-user     --username NAME --email EMAIL --password PASSWORD
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(out, usage)
		return nil
	}

	command, rest := args[0], args[1:]
	switch command {
	case "create-product", "create-user":
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := utils.InitializeMysql(ctx, cfg.MySQL.DSN, cfg.MySQL.MaxOpenConns,
		cfg.MySQL.MaxIdleConns, cfg.MySQL.ConnMaxLifetime)
	if err != nil {
		return err
	}
	defer db.Close()

	switch command {
	case "create-product":
		return createProduct(ctx, rest, mysql.NewMySQLProductRepository(db), out)
	default:
		return createUser(ctx, rest, mysql.NewMySQLUserRepository(db), security.HashPassword, out)
	}
}

func createProduct(ctx context.Context, args []string, products repositories.ProductRepository, out io.Writer) error {
	var name string
	var price float64

	flagSet := pflag.NewFlagSet("create-product", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVar(&name, "name", "", "product name")
	flagSet.Float64Var(&price, "price", 0, "starting price")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("--name is required")
	}
	if price < 0 {
		return errors.New("--price must not be negative")
	}

	product := &domain.Product{Name: name, Price: price}
	if err := products.CreateProduct(ctx, product); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	fmt.Fprintf(out, "created product %d: %s (%.2f)\n", product.ID, product.Name, product.Price)
	return nil
}

func createUser(ctx context.Context, args []string, users repositories.UserRepository,
	hash func(string) (string, error), out io.Writer) error {
	var username, email, password string

	flagSet := pflag.NewFlagSet("create-user", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVar(&username, "username", "", "unique username")
	flagSet.StringVar(&email, "email", "", "email address")
	flagSet.StringVar(&password, "password", "", "plain text password, stored hashed")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return errors.New("--username and --password are required")
	}

	passwordHash, err := hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Username: username, Email: strings.TrimSpace(email), PasswordHash: passwordHash}
	if err := users.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(out, "created user %d: %s\n", user.ID, user.Username)
	return nil
}
