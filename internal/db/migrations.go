package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		username VARCHAR(80) NOT NULL,
		email VARCHAR(120) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		real_name VARCHAR(50),
		phone VARCHAR(20),
		department VARCHAR(50),
		position VARCHAR(50),
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		last_login TIMESTAMPTZ
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_username ON users (username);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email ON users (email);`,
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		name VARCHAR(100) NOT NULL,
		company VARCHAR(200),
		industry VARCHAR(100),
		customer_type VARCHAR(20) NOT NULL DEFAULT 'individual',
		contact_person VARCHAR(50),
		phone VARCHAR(20),
		mobile VARCHAR(20),
		email VARCHAR(120),
		website VARCHAR(200),
		address TEXT,
		city VARCHAR(50),
		province VARCHAR(50),
		country VARCHAR(50),
		postal_code VARCHAR(10),
		source VARCHAR(50),
		level VARCHAR(2) NOT NULL DEFAULT 'C',
		status VARCHAR(20) NOT NULL DEFAULT 'potential',
		credit_limit NUMERIC(15,2) NOT NULL DEFAULT 0,
		sales_user_id BIGINT REFERENCES users(id),
		first_contact_date DATE,
		last_contact_date DATE,
		next_follow_date DATE,
		description TEXT,
		notes TEXT,
		tags VARCHAR(500)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_customers_sales_user_id ON customers (sales_user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_customers_status ON customers (status);`,
	`CREATE TABLE IF NOT EXISTS quotes (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		quote_number VARCHAR(50) NOT NULL,
		title VARCHAR(200) NOT NULL,
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		sales_user_id BIGINT NOT NULL REFERENCES users(id),
		quote_date DATE NOT NULL,
		valid_until DATE NOT NULL,
		currency VARCHAR(10) NOT NULL DEFAULT 'CNY',
		subtotal NUMERIC(15,2) NOT NULL DEFAULT 0,
		discount_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
		discount_amount NUMERIC(15,2) NOT NULL DEFAULT 0,
		tax_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
		tax_amount NUMERIC(15,2) NOT NULL DEFAULT 0,
		total_amount NUMERIC(15,2) NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'draft',
		description TEXT,
		terms_conditions TEXT,
		notes TEXT,
		sent_date TIMESTAMPTZ,
		response_date TIMESTAMPTZ
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_quotes_number ON quotes (quote_number);`,
	`CREATE INDEX IF NOT EXISTS idx_quotes_customer_id ON quotes (customer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_quotes_status ON quotes (status);`,
	`CREATE TABLE IF NOT EXISTS quote_items (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		quote_id BIGINT NOT NULL REFERENCES quotes(id) ON DELETE CASCADE,
		product_name VARCHAR(200) NOT NULL,
		product_code VARCHAR(50),
		description TEXT,
		specification VARCHAR(500),
		unit VARCHAR(20),
		quantity NUMERIC(10,2) NOT NULL,
		unit_price NUMERIC(15,2) NOT NULL,
		total_price NUMERIC(15,2) NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		notes TEXT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_quote_items_quote_id ON quote_items (quote_id);`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		contract_number VARCHAR(50) NOT NULL,
		title VARCHAR(200) NOT NULL,
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		sales_user_id BIGINT NOT NULL REFERENCES users(id),
		quote_id BIGINT REFERENCES quotes(id),
		contract_date DATE NOT NULL,
		start_date DATE,
		end_date DATE,
		currency VARCHAR(10) NOT NULL DEFAULT 'CNY',
		contract_amount NUMERIC(15,2) NOT NULL,
		paid_amount NUMERIC(15,2) NOT NULL DEFAULT 0,
		remaining_amount NUMERIC(15,2) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'draft',
		content TEXT,
		terms_conditions TEXT,
		payment_terms TEXT,
		delivery_terms TEXT,
		notes TEXT,
		signed_date TIMESTAMPTZ,
		customer_signer VARCHAR(100),
		company_signer VARCHAR(100)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_number ON contracts (contract_number);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_customer_id ON contracts (customer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts (status);`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		order_number VARCHAR(50) NOT NULL,
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		sales_user_id BIGINT NOT NULL REFERENCES users(id),
		contract_id BIGINT REFERENCES contracts(id),
		order_date DATE NOT NULL,
		required_date DATE,
		shipped_date DATE,
		delivery_date DATE,
		currency VARCHAR(10) NOT NULL DEFAULT 'CNY',
		subtotal NUMERIC(15,2) NOT NULL DEFAULT 0,
		discount_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
		discount_amount NUMERIC(15,2) NOT NULL DEFAULT 0,
		tax_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
		tax_amount NUMERIC(15,2) NOT NULL DEFAULT 0,
		shipping_cost NUMERIC(15,2) NOT NULL DEFAULT 0,
		total_amount NUMERIC(15,2) NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		shipping_method VARCHAR(50),
		tracking_number VARCHAR(100),
		shipping_address TEXT,
		shipping_contact VARCHAR(100),
		shipping_phone VARCHAR(20),
		description TEXT,
		notes TEXT,
		internal_notes TEXT
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_orders_number ON orders (order_number);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders (customer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_contract_id ON orders (contract_id);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status);`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_name VARCHAR(200) NOT NULL,
		product_code VARCHAR(50),
		description TEXT,
		specification VARCHAR(500),
		unit VARCHAR(20),
		quantity NUMERIC(10,2) NOT NULL,
		unit_price NUMERIC(15,2) NOT NULL,
		total_price NUMERIC(15,2) NOT NULL,
		delivered_quantity NUMERIC(10,2) NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0,
		notes TEXT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id);`,
	`CREATE TABLE IF NOT EXISTS document_sequences (
		id BIGSERIAL PRIMARY KEY,
		prefix VARCHAR(8) NOT NULL,
		seq_date VARCHAR(8) NOT NULL,
		last_number BIGINT NOT NULL
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_document_sequences_prefix_date ON document_sequences (prefix, seq_date);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
