package store

// dialect captures the SQL differences between the database/sql backends
type dialect struct {
	name string
	// lower is the SQL function used to case-fold columns for search
	lower  string
	schema []string
}

var sqliteDialect = dialect{
	name:  "sqlite",
	lower: unicodeLowerFunc,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id VARCHAR(36) PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			link TEXT NOT NULL,
			thumbnail TEXT NOT NULL,
			category VARCHAR(16) NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_category ON projects(category, created_at)`,
		`CREATE TABLE IF NOT EXISTS about (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			skills TEXT NOT NULL,
			profile_picture TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id VARCHAR(36) PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)`,
	},
}

// MySQL cannot index TEXT without a prefix length and has no CREATE INDEX IF NOT EXISTS,
// so the index is declared inline.
var mysqlDialect = dialect{
	name:  "mysql",
	lower: "LOWER",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id VARCHAR(36) PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			link TEXT NOT NULL,
			thumbnail TEXT NOT NULL,
			category VARCHAR(16) NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL,
			INDEX idx_projects_category (category, created_at)
		)`,
		`CREATE TABLE IF NOT EXISTS about (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			skills TEXT NOT NULL,
			profile_picture TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id VARCHAR(36) PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)`,
	},
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id VARCHAR(36) PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		link TEXT NOT NULL,
		thumbnail TEXT NOT NULL,
		category VARCHAR(16) NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_category ON projects(category, created_at)`,
	`CREATE TABLE IF NOT EXISTS about (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		skills TEXT NOT NULL,
		profile_picture TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id VARCHAR(36) PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
}
