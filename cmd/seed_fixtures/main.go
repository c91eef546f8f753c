package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/app/discount/repo"
	"github.com/light-bringer/optics-discounts/internal/models/m_patient"
	"github.com/light-bringer/optics-discounts/internal/models/m_product"
	"github.com/light-bringer/optics-discounts/internal/pkg/config"
	httptransport "github.com/light-bringer/optics-discounts/internal/transport/http"
)

type productFixture struct {
	id, name    string
	price, cost string
}

// Fixture data for local development against the emulator.
var (
	products = []productFixture{
		{id: "prod-frames-01", name: "Titanium Frames", price: "199.99", cost: "80.00"},
		{id: "prod-lens-01", name: "Progressive Lenses", price: "350.00"},
		{id: "prod-contacts-01", name: "Daily Contacts (90)", price: "64.50"},
	}
	patients = []*m_patient.Data{
		{PatientID: "pat-0001", FullName: "Alex Morgan"},
		{PatientID: "pat-0002", FullName: "Sam Rivera"},
	}
)

// productRows converts the fixtures into storage rows.
func productRows(fixtures []productFixture) ([]*m_product.Data, error) {
	rows := make([]*m_product.Data, 0, len(fixtures))
	for _, f := range fixtures {
		price, err := domain.ParseMoney(f.price)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", f.id, err)
		}
		var cost *domain.Money
		if f.cost != "" {
			if cost, err = domain.ParseMoney(f.cost); err != nil {
				return nil, fmt.Errorf("product %s: %w", f.id, err)
			}
		}
		row, err := repo.ProductData(f.id, f.name, price, cost)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// splitProducts separates rows to insert from rows that already exist and
// only get their catalog columns refreshed.
func splitProducts(rows []*m_product.Data, existing map[string]bool) (inserts, updates []*m_product.Data) {
	for _, row := range rows {
		if existing[row.ProductID] {
			updates = append(updates, row)
		} else {
			inserts = append(inserts, row)
		}
	}
	return inserts, updates
}

func existingProducts(ctx context.Context, txn *spanner.ReadWriteTransaction, rows []*m_product.Data) (map[string]bool, error) {
	keys := make([]spanner.KeySet, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, spanner.Key{row.ProductID})
	}

	existing := make(map[string]bool, len(rows))
	iter := txn.Read(ctx, m_product.TableName, spanner.KeySets(keys...), []string{m_product.ProductID})
	err := iter.Do(func(r *spanner.Row) error {
		var id string
		if err := r.Column(0, &id); err != nil {
			return err
		}
		existing[id] = true
		return nil
	})
	return existing, err
}

// seed writes products and patients in one transaction. Existing products
// keep their has_discounts flag.
func seed(ctx context.Context, client *spanner.Client, rows []*m_product.Data) error {
	productModel := m_product.NewModel()
	patientModel := m_patient.NewModel()

	_, err := client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		existing, err := existingProducts(ctx, txn, rows)
		if err != nil {
			return fmt.Errorf("failed to read products: %w", err)
		}

		inserts, updates := splitProducts(rows, existing)
		muts := make([]*spanner.Mutation, 0, len(rows)+len(patients))
		for _, row := range inserts {
			muts = append(muts, productModel.InsertMut(row))
		}
		for _, row := range updates {
			muts = append(muts, productModel.UpdateCatalogMut(row))
		}
		for _, p := range patients {
			muts = append(muts, patientModel.InsertMut(p))
		}
		return txn.BufferWrite(muts)
	})
	return err
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Lifetime of the printed dev tokens")
	flag.Parse()

	if !cfg.IsDevelopment() {
		fmt.Fprintf(os.Stderr, "Refusing to seed fixtures in %q\n", cfg.Environment)
		os.Exit(1)
	}

	rows, err := productRows(products)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid fixtures: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	client, err := spanner.NewClient(ctx, cfg.SpannerDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := seed(ctx, client, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed fixtures: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d products and %d patients\n", len(products), len(patients))

	auth := httptransport.NewAuthenticator(cfg.JWTSecret)
	now := time.Now()
	for _, actor := range []domain.Actor{
		{UserID: "admin-dev", Role: domain.RoleAdmin},
		{UserID: "optician-dev", Role: domain.RoleUser},
	} {
		token, err := auth.IssueToken(actor, *tokenTTL, now)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to sign token: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n%s (%s):\n  %s\n", actor.UserID, actor.Role, token)
	}

	fmt.Println("\nTry the endpoints:")
	fmt.Printf("  curl -H 'Authorization: Bearer <token>' 'http://localhost:%s/products/prod-frames-01/calculate-price?quantity=2'\n", cfg.HTTPPort)
	fmt.Printf("  curl -H 'Authorization: Bearer <admin token>' 'http://localhost:%s/events'\n", cfg.HTTPPort)
}
