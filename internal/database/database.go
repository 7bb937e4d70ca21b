package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

const tableName = "war_results"

const columns = "id, created_at, winner, draws, wars, max_war_depth, decks, jokers, seed, capped"

// Service stores finished games in SQLite or, with the "pgx" driver, in
// PostgreSQL.
type Service struct {
	db         *sql.DB
	m          *sync.Mutex
	driver     string
	table_name string
}

// New opens dsn with driver ("sqlite3" or "pgx") and creates the results
// table if needed.
func New(driver, dsn string) (*Service, error) {
	if driver != "sqlite3" && driver != "pgx" {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == "sqlite3" && strings.Contains(dsn, ":memory:") {
		// Every new connection would see its own empty in-memory database.
		db.SetMaxOpenConns(1)
	}

	sqlStmt := `
	create table if not exists ` + tableName + ` (
		id text not null primary key,
		created_at text not null,
		winner text not null,
		draws integer not null,
		wars integer not null,
		max_war_depth integer not null,
		decks integer not null,
		jokers text not null,
		seed text not null,
		capped boolean not null
	);
	`
	if _, err := db.Exec(sqlStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("create %s: %w", tableName, err)
	}

	return &Service{
		db:         db,
		m:          &sync.Mutex{},
		driver:     driver,
		table_name: tableName,
	}, nil
}

func (s *Service) Close() error {
	return s.db.Close()
}

func (s *Service) TableName() string {
	return s.table_name
}

func (s *Service) Driver() string {
	return s.driver
}

// rebind turns ? placeholders into $1, $2, ... for PostgreSQL.
func (s *Service) rebind(query string) string {
	if s.driver != "pgx" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (GameResult, error) {
	var result GameResult
	err := row.Scan(
		&result.ID,
		&result.CreatedAt,
		&result.Winner,
		&result.Draws,
		&result.Wars,
		&result.MaxWarDepth,
		&result.Decks,
		&result.Jokers,
		&result.Seed,
		&result.Capped)
	return result, err
}

func (s *Service) query(query string, args ...any) ([]GameResult, error) {
	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []GameResult{}
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// GetAll returns every stored game, oldest first.
func (s *Service) GetAll() ([]GameResult, error) {
	s.m.Lock()
	defer s.m.Unlock()
	return s.query("SELECT " + columns + " FROM " + s.table_name + " ORDER BY created_at, id")
}

// GetByID returns sql.ErrNoRows when id is unknown.
func (s *Service) GetByID(id string) (GameResult, error) {
	s.m.Lock()
	defer s.m.Unlock()
	row := s.db.QueryRow(s.rebind("SELECT "+columns+" FROM "+s.table_name+" WHERE id = ?"), id)
	return scanResult(row)
}

// GetByWinner returns the games won by winner ("A", "B" or "none"), or
// sql.ErrNoRows when there are none.
func (s *Service) GetByWinner(winner string) ([]GameResult, error) {
	s.m.Lock()
	defer s.m.Unlock()
	results, err := s.query("SELECT "+columns+" FROM "+s.table_name+
		" WHERE winner = ? ORDER BY created_at, id", winner)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, sql.ErrNoRows
	}
	return results, nil
}

func (s *Service) Insert(result GameResult) error {
	s.m.Lock()
	defer s.m.Unlock()
	_, err := s.db.Exec(s.rebind("INSERT INTO "+s.table_name+
		" ("+columns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		result.ID,
		result.CreatedAt,
		result.Winner,
		result.Draws,
		result.Wars,
		result.MaxWarDepth,
		result.Decks,
		result.Jokers,
		result.Seed,
		result.Capped)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", result.ID, err)
	}
	return nil
}

// Stats aggregates all stored games. An empty table gives zero Stats.
func (s *Service) Stats() (Stats, error) {
	s.m.Lock()
	defer s.m.Unlock()
	var st Stats
	err := s.db.QueryRow(`SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN winner = 'A' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN winner = 'B' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN winner = 'none' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN capped THEN 1 ELSE 0 END), 0),
		COALESCE(AVG(draws * 1.0), 0),
		COALESCE(MAX(draws), 0),
		COALESCE(MAX(max_war_depth), 0)
	FROM ` + s.table_name).Scan(
		&st.Games,
		&st.WinsA,
		&st.WinsB,
		&st.NoWinner,
		&st.Capped,
		&st.AvgDraws,
		&st.MaxDraws,
		&st.MaxWarDepth)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}
