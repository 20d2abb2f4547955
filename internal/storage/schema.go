package storage

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER NOT NULL UNIQUE,
		telegram_username TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		agent_id INTEGER NOT NULL DEFAULT 1,
		balance INTEGER NOT NULL DEFAULT 0,
		is_agent INTEGER NOT NULL DEFAULT 0,
		is_blocked INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS agents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		admin_user_id INTEGER NOT NULL UNIQUE,
		agent_code INTEGER NOT NULL,
		brand_name TEXT NOT NULL DEFAULT '',
		persian_brand_name TEXT NOT NULL DEFAULT '',
		path TEXT NOT NULL DEFAULT '',
		agent_percent INTEGER NOT NULL DEFAULT 0,
		user_percent INTEGER NOT NULL DEFAULT 0,
		special_percent INTEGER NOT NULL DEFAULT 0,
		card_number TEXT NOT NULL DEFAULT '',
		card_holder_name TEXT NOT NULL DEFAULT '',
		card_payment_enabled INTEGER NOT NULL DEFAULT 0,
		user_min_topup INTEGER NOT NULL DEFAULT 0,
		user_max_topup INTEGER NOT NULL DEFAULT 0,
		agent_min_topup INTEGER NOT NULL DEFAULT 0,
		agent_max_topup INTEGER NOT NULL DEFAULT 0,
		allow_negative INTEGER NOT NULL DEFAULT 0,
		negative_charge_ceiling INTEGER NOT NULL DEFAULT 0,
		disabled_account_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_agents_path ON agents(path)`,

	`CREATE TABLE IF NOT EXISTS agent_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		parent_agent_id INTEGER NOT NULL,
		brand_name TEXT NOT NULL DEFAULT '',
		persian_brand_name TEXT NOT NULL DEFAULT '',
		card_number TEXT NOT NULL DEFAULT '',
		card_holder_name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		agent_percent INTEGER NOT NULL DEFAULT 0,
		user_percent INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL,
		decided_at TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS agent_incomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		agent_id INTEGER NOT NULL,
		subscription_id INTEGER NOT NULL,
		profit INTEGER NOT NULL,
		base_price INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_agent_incomes_agent ON agent_incomes(agent_id)`,

	`CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		amount INTEGER NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		receipt_file_id TEXT NOT NULL DEFAULT '',
		idempotency_key TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL,
		decided_at TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS vpns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		gb_min INTEGER NOT NULL DEFAULT 1,
		gb_max INTEGER NOT NULL DEFAULT 1000,
		day_min INTEGER NOT NULL DEFAULT 1,
		day_max INTEGER NOT NULL DEFAULT 365,
		gb_price INTEGER NOT NULL DEFAULT 0,
		day_price INTEGER NOT NULL DEFAULT 0,
		test_enabled INTEGER NOT NULL DEFAULT 0,
		test_gb INTEGER NOT NULL DEFAULT 0,
		test_days INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS vpn_templates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vpn_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		gb INTEGER NOT NULL,
		days INTEGER NOT NULL,
		price INTEGER NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1
	)`,

	`CREATE TABLE IF NOT EXISTS subscriptions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		vpn_id INTEGER NOT NULL,
		marzban_username TEXT NOT NULL,
		subscription_url TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		gb INTEGER NOT NULL DEFAULT 0,
		days INTEGER NOT NULL DEFAULT 0,
		is_test INTEGER NOT NULL DEFAULT 0,
		expires_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_user ON subscriptions(user_id)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER NOT NULL,
		message TEXT NOT NULL,
		buttons TEXT NOT NULL DEFAULT '[]',
		file_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL,
		sent_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_status ON notifications(status)`,

	// Seed the root agent under the first admin user; both use fixed id 1.
	`INSERT OR IGNORE INTO users (id, chat_id, agent_id, is_agent, created_at, updated_at)
		VALUES (1, 0, 1, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
	`INSERT OR IGNORE INTO agents (id, admin_user_id, agent_code, brand_name, path, created_at, updated_at)
		VALUES (1, 1, 10001, 'root', '/1/', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
}
