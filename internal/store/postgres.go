package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"gamestore_pos/internal/models"

	_ "github.com/lib/pq"
)

// DBStore persists the catalog and the audit records in Postgres. Line
// items, sellers and payment breakdowns are stored as JSONB documents: they
// are immutable snapshots, never queried field-by-field.
type DBStore struct {
	DB *sql.DB
	sb sq.StatementBuilderType
}

func NewDBStore(db *sql.DB) *DBStore {
	return &DBStore{
		DB: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func ConnectDB(driver, dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func RunMigrations(db *sql.DB, migrationsDir string) error {
	if migrationsDir == "" {
		return fmt.Errorf("migrations directory not specified")
	}

	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrationFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			migrationFiles = append(migrationFiles, entry.Name())
		}
	}
	sort.Strings(migrationFiles)

	for _, fileName := range migrationFiles {
		content, err := os.ReadFile(filepath.Join(migrationsDir, fileName))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", fileName, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", fileName, err)
		}
	}
	return nil
}

func (s *DBStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func (s *DBStore) ListConfigurables(ctx context.Context) ([]models.ConfigurableProduct, error) {
	rows, err := s.sb.Select("id", "ean", "name").
		From("configurable_products").
		OrderBy("created_at").
		RunWith(s.DB).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list configurable products: %w", err)
	}
	defer rows.Close()

	var out []models.ConfigurableProduct
	for rows.Next() {
		var p models.ConfigurableProduct
		if err := rows.Scan(&p.ID, &p.EAN, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan configurable product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		variants, err := s.variantsByParent(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Variants = variants
	}
	return out, nil
}

func (s *DBStore) GetConfigurable(ctx context.Context, id string) (*models.ConfigurableProduct, error) {
	p := models.ConfigurableProduct{}
	err := s.sb.Select("id", "ean", "name").
		From("configurable_products").
		Where(sq.Eq{"id": id}).
		RunWith(s.DB).
		QueryRowContext(ctx).
		Scan(&p.ID, &p.EAN, &p.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get configurable product: %w", err)
	}
	variants, err := s.variantsByParent(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Variants = variants
	return &p, nil
}

func (s *DBStore) SaveConfigurable(ctx context.Context, p models.ConfigurableProduct) error {
	_, err := s.sb.Insert("configurable_products").
		SetMap(map[string]interface{}{
			"id":   p.ID,
			"ean":  p.EAN,
			"name": p.Name,
		}).
		Suffix("ON CONFLICT (id) DO UPDATE SET ean = EXCLUDED.ean, name = EXCLUDED.name").
		RunWith(s.DB).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to save configurable product: %w", err)
	}
	return nil
}

func (s *DBStore) DeleteConfigurable(ctx context.Context, id string) error {
	_, err := s.sb.Delete("configurable_products").
		Where(sq.Eq{"id": id}).
		RunWith(s.DB).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete configurable product: %w", err)
	}
	return nil
}

func (s *DBStore) variantsByParent(ctx context.Context, parentID string) ([]models.SimpleProduct, error) {
	rows, err := s.sb.Select("id", "ean", "name", "condition", "price", "vat", "stock", "parent_id").
		From("simple_products").
		Where(sq.Eq{"parent_id": parentID}).
		OrderBy("created_at").
		RunWith(s.DB).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants for %s: %w", parentID, err)
	}
	defer rows.Close()
	return scanVariants(rows)
}

func (s *DBStore) ListVariants(ctx context.Context) ([]models.SimpleProduct, error) {
	rows, err := s.sb.Select("id", "ean", "name", "condition", "price", "vat", "stock", "parent_id").
		From("simple_products").
		OrderBy("created_at").
		RunWith(s.DB).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	defer rows.Close()
	return scanVariants(rows)
}

func scanVariants(rows *sql.Rows) ([]models.SimpleProduct, error) {
	var out []models.SimpleProduct
	for rows.Next() {
		var p models.SimpleProduct
		var parentID sql.NullString
		if err := rows.Scan(&p.ID, &p.EAN, &p.Name, &p.Condition, &p.Price, &p.VAT, &p.Stock, &parentID); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		p.ParentID = parentID.String
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *DBStore) GetVariant(ctx context.Context, id string) (*models.SimpleProduct, error) {
	var p models.SimpleProduct
	var parentID sql.NullString
	err := s.sb.Select("id", "ean", "name", "condition", "price", "vat", "stock", "parent_id").
		From("simple_products").
		Where(sq.Eq{"id": id}).
		RunWith(s.DB).
		QueryRowContext(ctx).
		Scan(&p.ID, &p.EAN, &p.Name, &p.Condition, &p.Price, &p.VAT, &p.Stock, &parentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get variant: %w", err)
	}
	p.ParentID = parentID.String
	return &p, nil
}

func (s *DBStore) SaveVariant(ctx context.Context, p models.SimpleProduct) error {
	var parentID interface{}
	if p.ParentID != "" {
		parentID = p.ParentID
	}
	_, err := s.sb.Insert("simple_products").
		SetMap(map[string]interface{}{
			"id":        p.ID,
			"ean":       p.EAN,
			"name":      p.Name,
			"condition": string(p.Condition),
			"price":     p.Price,
			"vat":       p.VAT,
			"stock":     p.Stock,
			"parent_id": parentID,
		}).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price, stock = EXCLUDED.stock").
		RunWith(s.DB).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to save variant: %w", err)
	}
	return nil
}

func (s *DBStore) DeleteVariant(ctx context.Context, id string) error {
	_, err := s.sb.Delete("simple_products").
		Where(sq.Eq{"id": id}).
		RunWith(s.DB).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete variant: %w", err)
	}
	return nil
}

func (s *DBStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.sb.Select("id", "first_name", "last_name", "email", "phone", "loyalty_points").
		From("customers").
		OrderBy("created_at").
		RunWith(s.DB).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var out []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.LoyaltyPoints); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *DBStore) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	var c models.Customer
	err := s.sb.Select("id", "first_name", "last_name", "email", "phone", "loyalty_points").
		From("customers").
		Where(sq.Eq{"id": id}).
		RunWith(s.DB).
		QueryRowContext(ctx).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.LoyaltyPoints)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

func (s *DBStore) SaveCustomer(ctx context.Context, c models.Customer) error {
	_, err := s.sb.Insert("customers").
		SetMap(map[string]interface{}{
			"id":             c.ID,
			"first_name":     c.FirstName,
			"last_name":      c.LastName,
			"email":          c.Email,
			"phone":          c.Phone,
			"loyalty_points": c.LoyaltyPoints,
		}).
		Suffix("ON CONFLICT (id) DO UPDATE SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, email = EXCLUDED.email, phone = EXCLUDED.phone, loyalty_points = EXCLUDED.loyalty_points").
		RunWith(s.DB).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

func (s *DBStore) DeleteCustomer(ctx context.Context, id string) error {
	_, err := s.sb.Delete("customers").
		Where(sq.Eq{"id": id}).
		RunWith(s.DB).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}

func (s *DBStore) ListPurchases(ctx context.Context) ([]models.Purchase, error) {
	rows, err := s.sb.Select("id", "date", "seller", "lines", "total_amount", "payment_method").
		From("purchases").
		OrderBy("date").
		RunWith(s.DB).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var out []models.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPurchase(rows *sql.Rows) (models.Purchase, error) {
	var p models.Purchase
	var sellerJSON, linesJSON []byte
	if err := rows.Scan(&p.ID, &p.Date, &sellerJSON, &linesJSON, &p.TotalAmount, &p.PaymentMethod); err != nil {
		return models.Purchase{}, fmt.Errorf("failed to scan purchase: %w", err)
	}
	if err := json.Unmarshal(sellerJSON, &p.Seller); err != nil {
		return models.Purchase{}, fmt.Errorf("failed to unmarshal purchase seller: %w", err)
	}
	if err := json.Unmarshal(linesJSON, &p.Lines); err != nil {
		return models.Purchase{}, fmt.Errorf("failed to unmarshal purchase lines: %w", err)
	}
	return p, nil
}

func (s *DBStore) GetPurchase(ctx context.Context, id string) (*models.Purchase, error) {
	var p models.Purchase
	var sellerJSON, linesJSON []byte
	err := s.sb.Select("id", "date", "seller", "lines", "total_amount", "payment_method").
		From("purchases").
		Where(sq.Eq{"id": id}).
		RunWith(s.DB).
		QueryRowContext(ctx).
		Scan(&p.ID, &p.Date, &sellerJSON, &linesJSON, &p.TotalAmount, &p.PaymentMethod)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	if err := json.Unmarshal(sellerJSON, &p.Seller); err != nil {
		return nil, fmt.Errorf("failed to unmarshal purchase seller: %w", err)
	}
	if err := json.Unmarshal(linesJSON, &p.Lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal purchase lines: %w", err)
	}
	return &p, nil
}

func (s *DBStore) SavePurchase(ctx context.Context, p models.Purchase) error {
	sellerJSON, err := json.Marshal(p.Seller)
	if err != nil {
		return fmt.Errorf("failed to marshal purchase seller: %w", err)
	}
	linesJSON, err := json.Marshal(p.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal purchase lines: %w", err)
	}
	_, err = s.sb.Insert("purchases").
		SetMap(map[string]interface{}{
			"id":             p.ID,
			"date":           p.Date,
			"seller":         sellerJSON,
			"lines":          linesJSON,
			"total_amount":   p.TotalAmount,
			"payment_method": string(p.PaymentMethod),
		}).
		RunWith(s.DB).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to save purchase: %w", err)
	}
	return nil
}

func (s *DBStore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.sb.Select("id", "date", "lines", "total", "payment_method", "payments", "customer").
		From("transactions").
		OrderBy("date").
		RunWith(s.DB).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var linesJSON, paymentsJSON []byte
		var customerJSON []byte
		if err := rows.Scan(&t.ID, &t.Date, &linesJSON, &t.Total, &t.PaymentMethod, &paymentsJSON, &customerJSON); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if err := unmarshalTransaction(&t, linesJSON, paymentsJSON, customerJSON); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *DBStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var t models.Transaction
	var linesJSON, paymentsJSON, customerJSON []byte
	err := s.sb.Select("id", "date", "lines", "total", "payment_method", "payments", "customer").
		From("transactions").
		Where(sq.Eq{"id": id}).
		RunWith(s.DB).
		QueryRowContext(ctx).
		Scan(&t.ID, &t.Date, &linesJSON, &t.Total, &t.PaymentMethod, &paymentsJSON, &customerJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if err := unmarshalTransaction(&t, linesJSON, paymentsJSON, customerJSON); err != nil {
		return nil, err
	}
	return &t, nil
}

func unmarshalTransaction(t *models.Transaction, linesJSON, paymentsJSON, customerJSON []byte) error {
	if err := json.Unmarshal(linesJSON, &t.Lines); err != nil {
		return fmt.Errorf("failed to unmarshal transaction lines: %w", err)
	}
	if err := json.Unmarshal(paymentsJSON, &t.Payments); err != nil {
		return fmt.Errorf("failed to unmarshal transaction payments: %w", err)
	}
	if len(customerJSON) > 0 {
		if err := json.Unmarshal(customerJSON, &t.Customer); err != nil {
			return fmt.Errorf("failed to unmarshal transaction customer: %w", err)
		}
	}
	return nil
}

func (s *DBStore) SaveTransaction(ctx context.Context, t models.Transaction) error {
	linesJSON, err := json.Marshal(t.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction lines: %w", err)
	}
	paymentsJSON, err := json.Marshal(t.Payments)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction payments: %w", err)
	}
	var customerJSON interface{}
	if t.Customer != nil {
		b, err := json.Marshal(t.Customer)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction customer: %w", err)
		}
		customerJSON = b
	}
	_, err = s.sb.Insert("transactions").
		SetMap(map[string]interface{}{
			"id":             t.ID,
			"date":           t.Date,
			"lines":          linesJSON,
			"total":          t.Total,
			"payment_method": string(t.PaymentMethod),
			"payments":       paymentsJSON,
			"customer":       customerJSON,
		}).
		RunWith(s.DB).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

var _ CatalogStore = (*DBStore)(nil)
var _ CustomerStore = (*DBStore)(nil)
var _ PurchaseStore = (*DBStore)(nil)
var _ TransactionStore = (*DBStore)(nil)
