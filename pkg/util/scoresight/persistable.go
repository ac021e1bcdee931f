package scoresight

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/springboardmentor2001-sudo/ScoreSight-EPLPrediction/internal/logger"
	_ "modernc.org/sqlite"
)

// Persistable interface defines methods that persistent objects must implement
type Persistable interface {
	GetTableName() string
	GetPrimaryKey() map[string]any
	SetPrimaryKey(map[string]any) error
	BeforeSave() error
	AfterSave() error
	BeforeDelete() error
	AfterDelete() error
}

// Loadable objects are given a chance to rebuild non persisted fields after a SELECT
type Loadable interface {
	AfterLoad() error
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Database wraps a sqlite connection and the reflective table mapping
type Database struct {
	db   *sql.DB
	path string
}

// OpenDatabase opens (creating if needed) the sqlite database at path.
// ":memory:" gives a private in-memory database.
func OpenDatabase(path string) (*Database, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a second pooled connection to :memory: would see an empty database
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database initialized successfully", path)
	return &Database{db: db, path: path}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Path returns the location the database was opened from
func (d *Database) Path() string {
	return d.path
}

// persistentField is one struct field that maps to a column
type persistentField struct {
	index   int
	column  string
	dbType  string
	primary bool
	indexed bool
}

// persistentFields walks the struct tags of obj.
// Fields without a dbtype, unexported fields and persist:"false" fields are not columns.
func persistentFields(obj any) []persistentField {
	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}

	var fields []persistentField
	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Tag.Get("persist") == "false" || field.Tag.Get("db") == "-" {
			continue
		}
		dbType := field.Tag.Get("dbtype")
		if dbType == "" {
			continue
		}
		column := field.Tag.Get("column")
		if column == "" {
			column = strings.ToLower(field.Name)
		}
		fields = append(fields, persistentField{
			index:   i,
			column:  column,
			dbType:  dbType,
			primary: field.Tag.Get("primary") == "true",
			indexed: field.Tag.Get("index") != "",
		})
	}
	return fields
}

// CreateTable creates a table for the given persistable object using struct tags
func (d *Database) CreateTable(obj Persistable) error {
	tableName := obj.GetTableName()
	createSQL := generateCreateTableSQL(obj, tableName)

	logger.Debug("Creating table with SQL", createSQL)

	if _, err := d.db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	for _, query := range generateIndexSQL(obj, tableName) {
		logger.Debug("Creating index with SQL", query)
		if _, err := d.db.Exec(query); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}
	return nil
}

// generateCreateTableSQL generates CREATE TABLE SQL from struct tags
func generateCreateTableSQL(obj any, tableName string) string {
	var columns []string
	var primaryKeys []string

	for _, f := range persistentFields(obj) {
		dbType := f.dbType
		if f.primary {
			primaryKeys = append(primaryKeys, f.column)
			// the compound PRIMARY KEY constraint below replaces any inline one
			dbType = strings.TrimSpace(strings.ReplaceAll(dbType, "PRIMARY KEY", ""))
		}
		columns = append(columns, fmt.Sprintf("%s %s", f.column, dbType))
	}

	if len(primaryKeys) > 0 {
		columns = append(columns, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaryKeys, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(columns, ", "))
}

// generateIndexSQL generates index creation SQL from struct tags
func generateIndexSQL(obj any, tableName string) []string {
	var indexSQL []string
	for _, f := range persistentFields(obj) {
		if !f.indexed {
			continue
		}
		indexName := fmt.Sprintf("idx_%s_%s", tableName, f.column)
		indexSQL = append(indexSQL, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", indexName, tableName, f.column))
	}
	return indexSQL
}

// Save persists the object to the database (INSERT or UPDATE)
func (d *Database) Save(obj Persistable) error {
	return save(d.db, obj)
}

func save(ex execer, obj Persistable) error {
	if err := obj.BeforeSave(); err != nil {
		return fmt.Errorf("before save hook failed: %w", err)
	}

	exists, err := exists(ex, obj)
	if err != nil {
		return fmt.Errorf("failed to check existence: %w", err)
	}

	if exists {
		err = update(ex, obj)
	} else {
		err = insert(ex, obj)
	}
	if err != nil {
		return err
	}

	if err := obj.AfterSave(); err != nil {
		return fmt.Errorf("after save hook failed: %w", err)
	}
	return nil
}

// insert adds a new record to the database
func insert(ex execer, obj Persistable) error {
	tableName := obj.GetTableName()
	objValue := reflect.Indirect(reflect.ValueOf(obj))

	var columns, placeholders []string
	var values []any
	for _, f := range persistentFields(obj) {
		columns = append(columns, f.column)
		placeholders = append(placeholders, "?")
		values = append(values, objValue.Field(f.index).Interface())
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	logger.Debug("Insert SQL", query)

	if _, err := ex.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", tableName, err)
	}
	return nil
}

// update modifies an existing record in the database
func update(ex execer, obj Persistable) error {
	tableName := obj.GetTableName()
	objValue := reflect.Indirect(reflect.ValueOf(obj))

	var setPairs []string
	var values []any
	for _, f := range persistentFields(obj) {
		if f.primary {
			continue
		}
		setPairs = append(setPairs, fmt.Sprintf("%s = ?", f.column))
		values = append(values, objValue.Field(f.index).Interface())
	}

	whereClause, whereValues := buildWhereClause(obj.GetPrimaryKey())
	values = append(values, whereValues...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", tableName, strings.Join(setPairs, ", "), whereClause)
	logger.Debug("Update SQL", query)

	if _, err := ex.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to update %s: %w", tableName, err)
	}
	return nil
}

// Exists checks if the object exists in the database
func (d *Database) Exists(obj Persistable) (bool, error) {
	return exists(d.db, obj)
}

func exists(ex execer, obj Persistable) (bool, error) {
	tableName := obj.GetTableName()
	whereClause, values := buildWhereClause(obj.GetPrimaryKey())

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", tableName, whereClause)

	var count int
	if err := ex.QueryRow(query, values...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", tableName, err)
	}
	return count > 0, nil
}

// Delete removes the object from the database
func (d *Database) Delete(obj Persistable) error {
	if err := obj.BeforeDelete(); err != nil {
		return fmt.Errorf("before delete hook failed: %w", err)
	}

	tableName := obj.GetTableName()
	whereClause, values := buildWhereClause(obj.GetPrimaryKey())

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", tableName, whereClause)
	if _, err := d.db.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", tableName, err)
	}

	if err := obj.AfterDelete(); err != nil {
		return fmt.Errorf("after delete hook failed: %w", err)
	}
	return nil
}

// FindByPrimaryKey fills obj with the row matching primaryKey
func (d *Database) FindByPrimaryKey(obj Persistable, primaryKey map[string]any) error {
	tableName := obj.GetTableName()
	columns, destinations := getSelectData(obj)
	whereClause, values := buildWhereClause(primaryKey)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(columns, ", "), tableName, whereClause)
	logger.Debug("FindByPrimaryKey SQL", query)

	if err := d.db.QueryRow(query, values...).Scan(destinations...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("record not found in %s", tableName)
		}
		return fmt.Errorf("failed to scan row from %s: %w", tableName, err)
	}
	return afterLoad(obj)
}

// FindAll retrieves all records of the given type
func (d *Database) FindAll(obj Persistable) ([]any, error) {
	return d.FindWhere(obj, "1 = 1")
}

// FindWhere executes a custom WHERE query
func (d *Database) FindWhere(obj Persistable, whereClause string, args ...any) ([]any, error) {
	tableName := obj.GetTableName()
	columns, _ := getSelectData(obj)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(columns, ", "), tableName, whereClause)
	logger.Debug("FindWhere SQL", query)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tableName, err)
	}
	defer rows.Close()

	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}

	var results []any
	for rows.Next() {
		newObj := reflect.New(objType).Interface()
		_, destinations := getSelectData(newObj)
		if err := rows.Scan(destinations...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", tableName, err)
		}
		if err := afterLoad(newObj); err != nil {
			return nil, err
		}
		results = append(results, newObj)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", tableName, err)
	}
	return results, nil
}

func afterLoad(obj any) error {
	if l, ok := obj.(Loadable); ok {
		return l.AfterLoad()
	}
	return nil
}

// getSelectData extracts column names and scan destinations for SELECT
func getSelectData(obj any) ([]string, []any) {
	objValue := reflect.Indirect(reflect.ValueOf(obj))

	var columns []string
	var destinations []any
	for _, f := range persistentFields(obj) {
		columns = append(columns, f.column)
		destinations = append(destinations, objValue.Field(f.index).Addr().Interface())
	}
	return columns, destinations
}

// BulkSave saves multiple objects in a single transaction
func (d *Database) BulkSave(objects []Persistable) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, obj := range objects {
		if err := save(tx, obj); err != nil {
			return fmt.Errorf("failed to save object: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// buildWhereClause builds a WHERE clause from a primary key map.
// Columns are sorted so the generated SQL is stable.
func buildWhereClause(primaryKey map[string]any) (string, []any) {
	keys := make([]string, 0, len(primaryKey))
	for column := range primaryKey {
		keys = append(keys, column)
	}
	sort.Strings(keys)

	var conditions []string
	var values []any
	for _, column := range keys {
		conditions = append(conditions, fmt.Sprintf("%s = ?", column))
		values = append(values, primaryKey[column])
	}
	return strings.Join(conditions, " AND "), values
}

/////////////////////////////////////////////////////////////////////////
////// Matches table
/////////////////////////////////////////////////////////////////////////

// ImportMatches writes matches into the matches table, replacing rows with the same id.
// Returns the number of rows written.
func ImportMatches(d *Database, matches []*Match) (int, error) {
	if err := d.CreateTable(&Match{}); err != nil {
		return 0, fmt.Errorf("failed to create match table: %w", err)
	}
	objects := make([]Persistable, 0, len(matches))
	for _, m := range matches {
		objects = append(objects, m)
	}
	if err := d.BulkSave(objects); err != nil {
		return 0, fmt.Errorf("failed to save matches: %w", err)
	}
	logger.Info("Imported matches into", d.Path(), len(objects))
	return len(objects), nil
}

// LoadMatches reads every stored match ordered by date
func LoadMatches(d *Database) ([]*Match, error) {
	rows, err := d.FindWhere(&Match{}, "1 = 1 ORDER BY date, homeTeam")
	if err != nil {
		return nil, err
	}
	matches := make([]*Match, 0, len(rows))
	for _, r := range rows {
		m, ok := r.(*Match)
		if !ok {
			return nil, fmt.Errorf("unexpected row type %T", r)
		}
		matches = append(matches, m)
	}
	return matches, nil
}
