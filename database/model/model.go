package model

// Player carries the live per-player counters. DailyVotes and
// MonthlyVotes are only meaningful while LastVoteDay / LastMonthKey
// equal the current period keys; stale values are zeroed lazily on the
// next read or settlement.
type Player struct {
	Uuid          string  `gorm:"primaryKey;type:varchar(36)" json:"uuid"`
	Name          string  `gorm:"not null" json:"name"`
	TotalVotes    float64 `gorm:"not null;default:0" json:"totalVotes"`
	DailyVotes    float64 `gorm:"not null;default:0" json:"dailyVotes"`
	MonthlyVotes  float64 `gorm:"not null;default:0" json:"monthlyVotes"`
	StreakMonthly int     `gorm:"not null;default:0" json:"streakMonthly"`
	LastVoteDay   string  `gorm:"not null;default:''" json:"lastVoteDay"`
	LastMonthKey  string  `gorm:"not null;default:''" json:"lastMonthKey"`
	LastVoteEpoch int64   `gorm:"not null;default:0" json:"lastVoteEpoch"`
}

func (Player) TableName() string { return "players" }

// GlobalStat is a singleton row (id = 1) holding the server-wide daily
// counter, with the same staleness rule as Player keyed on LastDailyReset.
type GlobalStat struct {
	Id             int     `gorm:"primaryKey" json:"id"`
	DailyVotes     float64 `gorm:"not null;default:0" json:"dailyVotes"`
	LastDailyReset string  `gorm:"not null;default:''" json:"lastDailyReset"`
}

func (GlobalStat) TableName() string { return "global_stats" }

// GlobalGoalClaim existence proves a server-wide reward for
// (type, value, day) was already granted. Rows are inserted with
// ON CONFLICT DO NOTHING and never touched again.
type GlobalGoalClaim struct {
	GoalType  string `gorm:"primaryKey" json:"goalType"`
	GoalValue int    `gorm:"primaryKey" json:"goalValue"`
	DayKey    string `gorm:"primaryKey" json:"dayKey"`
}

func (GlobalGoalClaim) TableName() string { return "goal_claims_global" }

// PlayerGoalClaim is the per-player variant, keyed on an arbitrary
// period key (month key for monthly goals).
type PlayerGoalClaim struct {
	Uuid      string `gorm:"primaryKey;type:varchar(36)" json:"uuid"`
	GoalType  string `gorm:"primaryKey" json:"goalType"`
	GoalValue int    `gorm:"primaryKey" json:"goalValue"`
	PeriodKey string `gorm:"primaryKey" json:"periodKey"`
}

func (PlayerGoalClaim) TableName() string { return "goal_claims_player" }

// VoteLog is the append-only audit trail, one row per settled event.
type VoteLog struct {
	Id           int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Uuid         string  `gorm:"not null;type:varchar(36)" json:"uuid"`
	PlayerName   string  `gorm:"not null" json:"playerName"`
	ServiceName  string  `gorm:"not null" json:"serviceName"`
	Amount       float64 `gorm:"not null" json:"amount"`
	Multiplier   float64 `gorm:"not null" json:"multiplier"`
	CreatedEpoch int64   `gorm:"not null" json:"createdEpoch"`
}

func (VoteLog) TableName() string { return "vote_logs" }

// MonthlySnapshot is the lottery candidate pool: the running per-player
// monthly total, kept incrementally so past months stay queryable after
// the live counter rolls over.
type MonthlySnapshot struct {
	Uuid            string  `gorm:"primaryKey;type:varchar(36)" json:"uuid"`
	MonthKey        string  `gorm:"primaryKey" json:"monthKey"`
	PlayerName      string  `gorm:"not null" json:"playerName"`
	Votes           float64 `gorm:"not null" json:"votes"`
	LastUpdateEpoch int64   `gorm:"not null" json:"lastUpdateEpoch"`
}

func (MonthlySnapshot) TableName() string { return "monthly_snapshots" }

// MonthlyDraw records a monthly lottery result. Its existence is the
// already-drawn guard; at most one row per month, never updated.
type MonthlyDraw struct {
	MonthKey        string  `gorm:"primaryKey" json:"monthKey"`
	WinnerUuid      string  `gorm:"not null;type:varchar(36)" json:"winnerUuid"`
	WinnerName      string  `gorm:"not null" json:"winnerName"`
	TopVotes        float64 `gorm:"not null" json:"topVotes"`
	CandidatesCount int     `gorm:"not null" json:"candidatesCount"`
	ExecutedBy      string  `gorm:"not null" json:"executedBy"`
	ExecutedEpoch   int64   `gorm:"not null" json:"executedEpoch"`
	RewardCommand   string  `gorm:"not null" json:"rewardCommand"`
}

func (MonthlyDraw) TableName() string { return "monthly_draw_history" }
