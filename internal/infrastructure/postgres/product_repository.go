package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/estoque-cd/internal/domain"
	"github.com/jhoicas/estoque-cd/internal/domain/entity"
	"github.com/jhoicas/estoque-cd/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, COALESCE(ean, ''), COALESCE(reference, ''), name, description, sector_id, created_at, updated_at`

// Create persiste un nuevo producto. EAN y referencia vacíos se guardan como NULL.
// Una violación de unicidad significa que otra transacción creó la misma clave en paralelo:
// se informa como conflicto para que el reintento resuelva al producto existente.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, ean, reference, name, description, sector_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		p.ID, nullIfEmpty(p.EAN), nullIfEmpty(p.Reference), p.Name, p.Description, p.SectorID,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ConcurrencyConflict(err)
		}
		return mapErr("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product", `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByEAN busca por código de barras.
func (r *ProductRepo) GetByEAN(ctx context.Context, ean string) (*entity.Product, error) {
	if ean == "" {
		return nil, nil
	}
	return r.getOne(ctx, "get product by ean", `SELECT `+productColumns+` FROM products WHERE ean = $1`, ean)
}

// GetByReference busca por referencia del proveedor.
func (r *ProductRepo) GetByReference(ctx context.Context, reference string) (*entity.Product, error) {
	if reference == "" {
		return nil, nil
	}
	return r.getOne(ctx, "get product by reference", `SELECT `+productColumns+` FROM products WHERE reference = $1`, reference)
}

func (r *ProductRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.EAN, &p.Reference, &p.Name, &p.Description, &p.SectorID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr(op, err)
	}
	return &p, nil
}

// ListBySector lista los productos del sector con su stock, ordenados por nombre.
func (r *ProductRepo) ListBySector(ctx context.Context, sectorID string) ([]entity.ProductStock, error) {
	query := productStockSelect + ` WHERE p.sector_id = $1 ORDER BY p.name, p.id`
	rows, err := r.q.Query(ctx, query, sectorID)
	if err != nil {
		return nil, mapErr("list products by sector", err)
	}
	return scanProductStock(rows)
}

// productStockSelect une producto, sector y ledger; sin fila de stock la cantidad es 0.
const productStockSelect = `
	SELECT p.id, COALESCE(p.ean, ''), COALESCE(p.reference, ''), p.name, s.name,
	       COALESCE(sl.total_quantity, 0), COALESCE(sl.last_updated, p.created_at)
	FROM products p
	JOIN sectors s ON s.id = p.sector_id
	LEFT JOIN stock_levels sl ON sl.product_id = p.id`

func scanProductStock(rows pgx.Rows) ([]entity.ProductStock, error) {
	defer rows.Close()
	var list []entity.ProductStock
	for rows.Next() {
		var ps entity.ProductStock
		if err := rows.Scan(&ps.ProductID, &ps.EAN, &ps.Reference, &ps.Name, &ps.Sector,
			&ps.Quantity, &ps.LastUpdated); err != nil {
			return nil, mapErr("scan product stock", err)
		}
		list = append(list, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("iterate product stock", err)
	}
	return list, nil
}
