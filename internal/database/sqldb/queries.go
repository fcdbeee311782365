package sqldb

// Metadata queries per server flavour.
const (
	queryListTablesSQLServer = `
		SELECT TABLE_SCHEMA + '.' + TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_SCHEMA, TABLE_NAME`

	queryListTablesMySQL = `
		SELECT CONCAT(table_schema, '.', table_name)
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_schema = DATABASE()
		ORDER BY table_name`
)
