package postgres

// Migrations — схема БД по версиям. Встроены в код для упрощения деплоя.
// Новые миграции только дописываются в конец, старые не меняются.
var Migrations = []Migration{
	{1, migration001Members},
	{2, migration002Economy},
	{3, migration003Streaks},
	{4, migration004DailyLogs},
	{5, migration005Rewards},
	{6, migration006Friends},
}

const migration001Members = `
CREATE TABLE IF NOT EXISTS members (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255) NOT NULL DEFAULT '',
    display_name VARCHAR(255) NOT NULL DEFAULT '',
    avatar_ref VARCHAR(255) NOT NULL DEFAULT '',
    timezone VARCHAR(64) NOT NULL DEFAULT 'Europe/Moscow',
    current_streak INTEGER NOT NULL DEFAULT 0,
    best_streak INTEGER NOT NULL DEFAULT 0,
    joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_members_username ON members(LOWER(username));
`

const migration002Economy = `
CREATE TABLE IF NOT EXISTS balances (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL REFERENCES members(user_id),
    balance BIGINT NOT NULL DEFAULT 0,
    total_earned BIGINT NOT NULL DEFAULT 0 CHECK (total_earned >= 0),
    total_spent BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS transactions (
    id BIGSERIAL PRIMARY KEY,
    from_user_id BIGINT REFERENCES members(user_id),
    to_user_id BIGINT REFERENCES members(user_id),
    amount BIGINT NOT NULL CHECK (amount > 0),
    transaction_type VARCHAR(50) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_transactions_from_user ON transactions(from_user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_to_user ON transactions(to_user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at DESC);
`

const migration003Streaks = `
CREATE TABLE IF NOT EXISTS streaks (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL REFERENCES members(user_id),
    current_streak INTEGER NOT NULL DEFAULT 0,
    best_streak INTEGER NOT NULL DEFAULT 0,
    last_log_date DATE,
    total_logs INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const migration004DailyLogs = `
CREATE TABLE IF NOT EXISTS daily_logs (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    log_date DATE NOT NULL,
    wake_time VARCHAR(5) NOT NULL,
    study_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
    break_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
    wasted_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
    tasks_assigned INTEGER NOT NULL DEFAULT 0,
    tasks_completed INTEGER NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT '',
    study_points INTEGER NOT NULL,
    task_points INTEGER NOT NULL,
    wake_points INTEGER NOT NULL,
    waste_penalty INTEGER NOT NULL,
    total_score INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, log_date)
);
CREATE INDEX IF NOT EXISTS idx_daily_logs_date ON daily_logs(log_date);
`

const migration005Rewards = `
CREATE TABLE IF NOT EXISTS catalog_rewards (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    cost BIGINT NOT NULL CHECK (cost > 0),
    icon VARCHAR(16) NOT NULL DEFAULT '🎁',
    category VARCHAR(50) NOT NULL DEFAULT 'general',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS custom_rewards (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    name VARCHAR(100) NOT NULL,
    cost BIGINT NOT NULL CHECK (cost > 0),
    icon VARCHAR(16) NOT NULL DEFAULT '🎁',
    category VARCHAR(50) NOT NULL DEFAULT 'general',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_custom_rewards_user ON custom_rewards(user_id);
CREATE TABLE IF NOT EXISTS purchases (
    id UUID PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    reward_kind VARCHAR(16) NOT NULL,
    reward_id BIGINT NOT NULL,
    reward_name VARCHAR(100) NOT NULL,
    cost BIGINT NOT NULL,
    purchase_date DATE NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_purchases_user ON purchases(user_id, created_at DESC);
INSERT INTO catalog_rewards (name, cost, icon, category) VALUES
    ('Серия любимого сериала', 30, '📺', 'отдых'),
    ('Вкусный десерт', 40, '🍰', 'еда'),
    ('Час видеоигр', 60, '🎮', 'отдых'),
    ('Поход в кино', 150, '🎬', 'досуг'),
    ('Выходной без планов', 300, '🏖', 'досуг');
`

const migration006Friends = `
CREATE TABLE IF NOT EXISTS friendships (
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    friend_id BIGINT NOT NULL REFERENCES members(user_id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, friend_id),
    CHECK (user_id <> friend_id)
);
`
