package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	inErrors "github.com/ornamently/jewelify/internal/errors"
	"github.com/ornamently/jewelify/product/pkg/request"
	"github.com/ornamently/jewelify/product/pkg/response"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return ProductRepository{pool: pool}
}

const productColumns = `id, name, category, description, image, price, quantity, created_at, updated_at`

func scanProduct(row pgx.Row) (response.Product, error) {
	product := response.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Description,
		&product.Image,
		&product.Price,
		&product.Quantity,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	return product, err
}

func (r ProductRepository) InsertProduct(
	c context.Context,
	param request.InsertProduct,
) (response.Product, error) {
	row := r.pool.QueryRow(
		c,
		`INSERT INTO products (id, name, category, description, image, price, quantity)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+productColumns,
		uuid.New(),
		param.Name,
		param.Category,
		param.Description,
		param.Image,
		param.Price,
		param.Quantity,
	)
	product, err := scanProduct(row)
	if err != nil {
		return response.Product{}, fmt.Errorf("failed inserting product with error=%w", err)
	}
	return product, nil
}

func (r ProductRepository) FindProductById(
	c context.Context,
	id uuid.UUID,
) (response.Product, error) {
	row := r.pool.QueryRow(
		c,
		`SELECT `+productColumns+` FROM products WHERE id = $1`,
		id,
	)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return response.Product{}, fmt.Errorf(
				"productId=%s with error=%w",
				id.String(),
				inErrors.ErrProductNotFound,
			)
		}
		return response.Product{}, fmt.Errorf("failed finding product with error=%w", err)
	}
	return product, nil
}

// FindProducts builds the WHERE clause from the filled filter fields only.
// param is expected to be normalized by the service first.
func (r ProductRepository) FindProducts(
	c context.Context,
	param request.ListProducts,
) ([]response.Product, error) {
	conditions := []string{}
	args := []interface{}{}

	if param.Name != "" {
		args = append(args, "%"+param.Name+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if param.Category != "" {
		args = append(args, param.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if !param.MinPrice.IsZero() {
		args = append(args, param.MinPrice)
		conditions = append(conditions, fmt.Sprintf("price >= $%d", len(args)))
	}
	if !param.MaxPrice.IsZero() {
		args = append(args, param.MaxPrice)
		conditions = append(conditions, fmt.Sprintf("price <= $%d", len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	switch param.SortBy {
	case "price_asc":
		query += " ORDER BY price ASC"
	case "price_desc":
		query += " ORDER BY price DESC"
	default:
		query += " ORDER BY created_at DESC"
	}

	args = append(args, param.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, param.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(c, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed finding products with error=%w", err)
	}
	defer rows.Close()

	products := []response.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed scanning product with error=%w", err)
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading products with error=%w", err)
	}
	return products, nil
}

func (r ProductRepository) UpdateProduct(
	c context.Context,
	id uuid.UUID,
	param request.UpdateProduct,
) (response.Product, error) {
	row := r.pool.QueryRow(
		c,
		`UPDATE products
		 SET name = $2, category = $3, description = $4, image = $5, price = $6,
		     quantity = $7, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+productColumns,
		id,
		param.Name,
		param.Category,
		param.Description,
		param.Image,
		param.Price,
		param.Quantity,
	)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return response.Product{}, fmt.Errorf(
				"productId=%s with error=%w",
				id.String(),
				inErrors.ErrProductNotFound,
			)
		}
		return response.Product{}, fmt.Errorf("failed updating product with error=%w", err)
	}
	return product, nil
}

func (r ProductRepository) DeleteProduct(c context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(c, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed deleting product with error=%w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf(
			"productId=%s with error=%w",
			id.String(),
			inErrors.ErrProductNotFound,
		)
	}
	return nil
}
