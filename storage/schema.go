package storage

// Schema statements per dialect, executed one at a time.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS case_definitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(255),
		description VARCHAR(255),
		active BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS examines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(255),
		case_definition_id INTEGER,
		FOREIGN KEY (case_definition_id) REFERENCES case_definitions(id) ON DELETE SET NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_examines_case_definition_id ON examines(case_definition_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS case_definitions (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255),
		description VARCHAR(255),
		active BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS examines (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255),
		case_definition_id BIGINT REFERENCES case_definitions(id) ON DELETE SET NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_examines_case_definition_id ON examines(case_definition_id)`,
}
