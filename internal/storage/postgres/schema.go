package postgres

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'CLIENT',
            credit_limit NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (credit_limit >= 0),
            credit_used NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (credit_used >= 0),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	`CREATE TABLE IF NOT EXISTS rfqs (
            id UUID PRIMARY KEY,
            client_id BIGINT NOT NULL REFERENCES users(id),
            status TEXT NOT NULL DEFAULT 'OPEN',
            items JSONB NOT NULL DEFAULT '[]',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	`CREATE TABLE IF NOT EXISTS quotes (
            id UUID PRIMARY KEY,
            rfq_id UUID NOT NULL REFERENCES rfqs(id),
            supplier_id BIGINT NOT NULL REFERENCES users(id),
            supplier_price NUMERIC(14,2) NOT NULL,
            margin_percent NUMERIC(6,2) NOT NULL DEFAULT 0,
            final_price NUMERIC(14,2) NOT NULL,
            status TEXT NOT NULL DEFAULT 'PENDING_ADMIN',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_quotes_accepted_per_rfq ON quotes(rfq_id) WHERE status = 'ACCEPTED'`,
	`CREATE TABLE IF NOT EXISTS orders (
            id UUID PRIMARY KEY,
            quote_id UUID UNIQUE REFERENCES quotes(id),
            client_id BIGINT NOT NULL REFERENCES users(id),
            supplier_id BIGINT NOT NULL REFERENCES users(id),
            amount NUMERIC(14,2) NOT NULL,
            status TEXT NOT NULL,
            items JSONB,
            payment_reference TEXT,
            payment_notes TEXT,
            payment_submitted_at TIMESTAMPTZ,
            payment_confirmed_at TIMESTAMPTZ,
            payment_confirmed_by BIGINT,
            payment_receipt_url TEXT,
            admin_verified BOOLEAN NOT NULL DEFAULT FALSE,
            admin_verified_by BIGINT,
            admin_verified_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_payment_reference ON orders(payment_reference) WHERE payment_reference IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_orders_updated ON orders(updated_at, id)`,
	`CREATE TABLE IF NOT EXISTS payment_audit_log (
            seq BIGSERIAL NOT NULL,
            id UUID PRIMARY KEY,
            order_id UUID NOT NULL REFERENCES orders(id),
            actor_user_id BIGINT NOT NULL,
            actor_role TEXT NOT NULL,
            action TEXT NOT NULL,
            from_status TEXT NOT NULL,
            to_status TEXT NOT NULL,
            payment_reference TEXT,
            notes TEXT,
            metadata JSONB NOT NULL DEFAULT '{}',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	`CREATE INDEX IF NOT EXISTS idx_payment_audit_order ON payment_audit_log(order_id, seq)`,
	`CREATE OR REPLACE FUNCTION payment_audit_log_immutable() RETURNS trigger AS $$
        BEGIN
            RAISE EXCEPTION 'payment_audit_log is append-only';
        END;
        $$ LANGUAGE plpgsql`,
	`CREATE OR REPLACE TRIGGER payment_audit_log_append_only
        BEFORE UPDATE OR DELETE ON payment_audit_log
        FOR EACH ROW EXECUTE FUNCTION payment_audit_log_immutable()`,
}

func (s *Storage) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
