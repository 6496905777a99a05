package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"torqbay/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error)
	// DecrementStock conditionally takes qty units off the shelf. It returns
	// false when stock was too low; the caller treats that as insufficient
	// stock discovered at commit time.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	RestoreStock(ctx context.Context, id uuid.UUID, qty int) error
}

type productRepo struct {
	db DB
}

func NewProductRepo(db DB) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, slug, name, description, category, sub_category, sub_sub_category, price, discount_price, stock, images, installation, created_at, updated_at`

func (r *productRepo) scanProduct(row pgx.Row) (*models.Product, error) {
	product := &models.Product{}
	var images, installation []byte
	err := row.Scan(&product.ID, &product.Slug, &product.Name, &product.Description,
		&product.Category, &product.SubCategory, &product.SubSubCategory,
		&product.Price, &product.DiscountPrice, &product.Stock,
		&images, &installation, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &product.Images); err != nil {
			return nil, fmt.Errorf("decode product images: %w", err)
		}
	}
	if len(installation) > 0 {
		if err := json.Unmarshal(installation, &product.Installation); err != nil {
			return nil, fmt.Errorf("decode installation override: %w", err)
		}
	}
	return product, nil
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	images, err := json.Marshal(product.Images)
	if err != nil {
		return err
	}
	installation, err := marshalInstallation(product.Installation)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO products (id, slug, name, description, category, sub_category, sub_sub_category, price, discount_price, stock, images, installation, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	_, err = r.db.Exec(ctx, query, product.ID, product.Slug, product.Name, product.Description,
		product.Category, product.SubCategory, product.SubSubCategory,
		product.Price, product.DiscountPrice, product.Stock, images, installation)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := r.scanProduct(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return product, err
}

func (r *productRepo) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`
	product, err := r.scanProduct(r.db.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return product, err
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	images, err := json.Marshal(product.Images)
	if err != nil {
		return err
	}
	installation, err := marshalInstallation(product.Installation)
	if err != nil {
		return err
	}
	query := `
		UPDATE products
		SET slug = $1, name = $2, description = $3, category = $4, sub_category = $5, sub_sub_category = $6, price = $7, discount_price = $8, stock = $9, images = $10, installation = $11, updated_at = NOW()
		WHERE id = $12
	`
	_, err = r.db.Exec(ctx, query, product.Slug, product.Name, product.Description,
		product.Category, product.SubCategory, product.SubSubCategory,
		product.Price, product.DiscountPrice, product.Stock, images, installation, product.ID)
	return err
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *productRepo) List(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	if filter == nil {
		filter = &models.ProductSearchFilter{}
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	queryBase := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	conditionCount := 0

	if filter.Query != "" {
		conditionCount++
		queryBase += fmt.Sprintf(` AND (name ILIKE $%d OR slug ILIKE $%d OR COALESCE(description, '') ILIKE $%d)`,
			conditionCount, conditionCount, conditionCount)
		args = append(args, "%"+filter.Query+"%")
	}

	// A slug set from the lineage index lets a parent-category filter match
	// products classified at any descendant level.
	if len(filter.CategorySlugs) > 0 {
		conditionCount++
		queryBase += fmt.Sprintf(` AND (category = ANY($%d) OR sub_category = ANY($%d) OR sub_sub_category = ANY($%d))`,
			conditionCount, conditionCount, conditionCount)
		args = append(args, filter.CategorySlugs)
	}

	if filter.MinPrice != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND price >= $%d`, conditionCount)
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND price <= $%d`, conditionCount)
		args = append(args, *filter.MaxPrice)
	}
	if filter.InStockOnly {
		queryBase += ` AND stock > 0`
	}

	validSortFields := map[string]bool{"name": true, "created_at": true, "price": true}
	sortField := "created_at"
	if validSortFields[filter.SortBy] {
		sortField = filter.SortBy
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}
	queryBase += fmt.Sprintf(` ORDER BY %s %s`, sortField, sortOrder)

	conditionCount++
	queryBase += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		conditionCount++
		queryBase += fmt.Sprintf(` OFFSET $%d`, conditionCount)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *productRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	// Conditional update closes the check-then-decrement race: two concurrent
	// orders cannot both take the last units.
	query := `UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1`
	tag, err := r.db.Exec(ctx, query, qty, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *productRepo) RestoreStock(ctx context.Context, id uuid.UUID, qty int) error {
	query := `UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, qty, id)
	return err
}

// marshalInstallation keeps an absent override as SQL NULL rather than the
// JSON literal "null".
func marshalInstallation(ov *models.InstallationOverride) ([]byte, error) {
	if ov == nil {
		return nil, nil
	}
	return json.Marshal(ov)
}
