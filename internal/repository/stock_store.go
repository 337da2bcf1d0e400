package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"panwatch/internal/domain/models"
	domrepo "panwatch/internal/domain/repository"
	"panwatch/pkg/util"
)

// SQLStockStore implements StockStore backed by SQLite.
type SQLStockStore struct {
	db *sql.DB
}

func NewSQLStockStore(d *DB) *SQLStockStore {
	return &SQLStockStore{db: d.db}
}

func (s *SQLStockStore) Create(ctx context.Context, stock *models.Stock) (*models.Stock, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO stocks (symbol, name, market, cost_price, quantity, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stock.Symbol, stock.Name, string(stock.Market), stock.CostPrice, stock.Quantity,
		boolToInt(stock.Enabled), util.FormatTime(now), util.FormatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert stock: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if len(stock.Agents) > 0 {
		if err := s.replaceAgents(ctx, id, stock.Agents); err != nil {
			return nil, err
		}
	}
	return s.GetBySymbol(ctx, stock.Symbol)
}

func (s *SQLStockStore) GetBySymbol(ctx context.Context, symbol string) (*models.Stock, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, symbol, name, market, cost_price, quantity, enabled, created_at, updated_at
		 FROM stocks WHERE symbol = ?`, symbol)

	stock, err := scanStock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domrepo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan stock: %w", err)
	}

	agents, err := s.agentsFor(ctx, stock.ID)
	if err != nil {
		return nil, err
	}
	stock.Agents = agents
	return stock, nil
}

func (s *SQLStockStore) List(ctx context.Context, enabledOnly bool) ([]models.Stock, error) {
	query := `SELECT id, symbol, name, market, cost_price, quantity, enabled, created_at, updated_at
	          FROM stocks`
	if enabledOnly {
		query += ` WHERE enabled = 1`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}
	defer rows.Close()

	out := make([]models.Stock, 0, 16)
	for rows.Next() {
		stock, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, *stock)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range out {
		agents, err := s.agentsFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Agents = agents
	}
	return out, nil
}

func (s *SQLStockStore) Update(ctx context.Context, stock *models.Stock) (*models.Stock, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE stocks SET name = ?, cost_price = ?, quantity = ?, enabled = ?, updated_at = ?
		 WHERE symbol = ?`,
		stock.Name, stock.CostPrice, stock.Quantity, boolToInt(stock.Enabled),
		util.FormatTime(time.Now().UTC()), stock.Symbol,
	)
	if err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, domrepo.ErrNotFound
	}
	return s.GetBySymbol(ctx, stock.Symbol)
}

func (s *SQLStockStore) Delete(ctx context.Context, symbol string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM stocks WHERE symbol = ?`, symbol)
	if err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domrepo.ErrNotFound
	}
	return nil
}

func (s *SQLStockStore) ReplaceAgents(ctx context.Context, symbol string, agents []models.StockAgentBinding) error {
	stock, err := s.GetBySymbol(ctx, symbol)
	if err != nil {
		return err
	}
	return s.replaceAgents(ctx, stock.ID, agents)
}

// ListAgentBindings returns symbol -> schedule override for every enabled
// stock bound to agentName. An empty schedule means "use the agent default".
func (s *SQLStockStore) ListAgentBindings(ctx context.Context, agentName string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT st.symbol, sa.schedule
		 FROM stock_agents sa
		 JOIN stocks st ON st.id = sa.stock_id
		 WHERE sa.agent_name = ? AND st.enabled = 1`, agentName)
	if err != nil {
		return nil, fmt.Errorf("list agent bindings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var symbol, schedule string
		if err := rows.Scan(&symbol, &schedule); err != nil {
			return nil, fmt.Errorf("scan binding: %w", err)
		}
		out[symbol] = schedule
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *SQLStockStore) replaceAgents(ctx context.Context, stockID int64, agents []models.StockAgentBinding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stock_agents WHERE stock_id = ?`, stockID); err != nil {
		return fmt.Errorf("clear agents: %w", err)
	}
	for _, a := range agents {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stock_agents (stock_id, agent_name, schedule) VALUES (?, ?, ?)`,
			stockID, a.AgentName, a.Schedule,
		); err != nil {
			return fmt.Errorf("insert agent binding: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLStockStore) agentsFor(ctx context.Context, stockID int64) ([]models.StockAgentBinding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT agent_name, schedule FROM stock_agents WHERE stock_id = ? ORDER BY agent_name`, stockID)
	if err != nil {
		return nil, fmt.Errorf("list stock agents: %w", err)
	}
	defer rows.Close()

	out := make([]models.StockAgentBinding, 0, 4)
	for rows.Next() {
		var b models.StockAgentBinding
		if err := rows.Scan(&b.AgentName, &b.Schedule); err != nil {
			return nil, fmt.Errorf("scan stock agent: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStock(row rowScanner) (*models.Stock, error) {
	var (
		stock              models.Stock
		market             string
		enabled            int
		createdAt, updated string
	)
	if err := row.Scan(&stock.ID, &stock.Symbol, &stock.Name, &market,
		&stock.CostPrice, &stock.Quantity, &enabled, &createdAt, &updated); err != nil {
		return nil, err
	}
	stock.Market = models.Market(market)
	stock.Enabled = enabled != 0
	stock.CreatedAt = util.ParseTimeDefault(createdAt, time.Time{})
	stock.UpdatedAt = util.ParseTimeDefault(updated, time.Time{})
	return &stock, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
