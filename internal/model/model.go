package model

import "time"

type User struct {
	ID                   int64
	Username             string
	Email                string
	PasswordHash         string
	FullName             string
	EmailVerified        bool
	PasswordResetCode    *string
	PasswordResetExpires *time.Time
	CreatedAt            time.Time
}

// PendingUser is a staged signup awaiting email verification. Rows expire
// after a short window and are overwritten on re-signup.
type PendingUser struct {
	ID                  int64
	FullName            string
	Email               string
	Username            string
	PasswordHash        string
	VerificationCode    string
	VerificationExpires time.Time
	CreatedAt           time.Time
}

type Team struct {
	ID          int64
	UserID      int64
	Name        string
	Description *string
	ImageURL    *string
	ImagePath   *string
	Color       *string
	CreatedAt   time.Time
}

type Match struct {
	ID            int64
	TeamID        int64
	Name          string
	Opponent      string
	GameDate      time.Time
	TeamScore     *int
	OpponentScore *int
	Description   *string
	CreatedAt     time.Time
}

type Player struct {
	ID           int64
	TeamID       int64
	PlayerName   string
	JerseyNumber int
	Unit         string
	Position     string
}

// PlayerStats holds one row per (player, game) pair. Every metric is optional
// because positions track different subsets; absent metrics stay NULL.
type PlayerStats struct {
	PlayerID int64
	GameID   int64

	SnapsPlayed *int
	Penalties   *int
	Turnovers   *int
	Touchdowns  *int

	PassAttempts        *int
	PassCompletions     *int
	PassingYards        *int
	PassingTDs          *int
	InterceptionsThrown *int

	RushAttempts *int
	RushingYards *int
	RushingTDs   *int

	Receptions     *int
	ReceivingYards *int
	ReceivingTDs   *int

	SacksAllowed *int

	Tackles          *int
	Sacks            *int
	Interceptions    *int
	ForcedFumbles    *int
	FumblesRecovered *int
	PassesDefended   *int

	FieldGoalsMade      *int
	FieldGoalsAttempted *int
	ExtraPointsMade     *int

	Punts     *int
	PuntYards *int

	KickReturns     *int
	KickReturnYards *int
	KickReturnTDs   *int

	PuntReturns     *int
	PuntReturnYards *int
	PuntReturnTDs   *int
}

type PlayerNote struct {
	ID        int64
	PlayerID  int64
	GameID    int64
	Category  string
	Note      string
	Time      *string
	CreatedAt time.Time
}

// GameState is a free-text observation about the game itself, grouped into a
// fixed set of categories.
type GameState struct {
	ID          int64
	GameID      int64
	Category    string
	Observation string
	Time        *string
	CreatedAt   time.Time
}

type Video struct {
	ID              int64
	UserID          int64
	TeamID          int64
	MatchID         int64
	Provider        string
	ProviderVideoID *string
	StoragePath     *string
	Filename        string
	CreatedAt       time.Time
}

const (
	VideoProviderYouTube = "youtube"
	VideoProviderUpload  = "upload"
)
