package internal

import (
	"math/rand/v2"
	"sync"
	"time"
)

const (
	BoardSize          = 25
	StartingTeamCells  = 9
	OtherTeamCells     = 8
	NeutralCells       = 7
	AssassinCells      = 1
	BonusGuesses       = 1
	RoomIdLength       = 6
	RecentRoomsListCap = 10
)

type Team string

const (
	TeamUnset Team = ""
	TeamRed   Team = "red"
	TeamBlue  Team = "blue"
)

// Other returns the opposing team. Unset stays unset.
func (t Team) Other() Team {
	switch t {
	case TeamRed:
		return TeamBlue
	case TeamBlue:
		return TeamRed
	}
	return TeamUnset
}

func (t Team) Valid() bool {
	return t == TeamRed || t == TeamBlue
}

type Role string

const (
	RoleUnset     Role = ""
	RoleSpymaster Role = "spymaster"
	RoleOperative Role = "operative"
)

func (r Role) Valid() bool {
	return r == RoleSpymaster || r == RoleOperative
}

// CellRole is the hidden affiliation of a board cell.
type CellRole string

const (
	CellRed      CellRole = "red"
	CellBlue     CellRole = "blue"
	CellNeutral  CellRole = "neutral"
	CellAssassin CellRole = "assassin"
)

// CellRoleFor maps a team onto the cell role that scores for it.
func CellRoleFor(t Team) CellRole {
	if t == TeamBlue {
		return CellBlue
	}
	return CellRed
}

type Cell struct {
	Word     string   `json:"word"`
	Role     CellRole `json:"role"`
	Revealed bool     `json:"revealed"`
}

type Clue struct {
	Text   string `json:"clue"`
	Number int    `json:"number"`
}

// Result is what every Room transition reports back to the caller.
type Result int

const (
	Rejected Result = iota
	Changed
)

func (r Result) String() string {
	if r == Changed {
		return "changed"
	}
	return "rejected"
}

type Room struct {
	Id        string    `json:"id"`
	Players   []*Player `json:"players"`
	Board     []Cell    `json:"board"`
	CreatorId string    `json:"creator_id"`

	// Turn state
	Turn         Team  `json:"turn"`
	Clue         *Clue `json:"clue"`
	ClueTeam     Team  `json:"clue_team"`
	GuessesLeft  int   `json:"guesses_left"`
	Winner       Team  `json:"winner"`
	ScoreRed     int   `json:"score_red"`
	ScoreBlue    int   `json:"score_blue"`
	StartingTeam Team  `json:"starting_team"`

	// Set once the registry drops the room; late events treat it as gone.
	Evicted bool `json:"-"`

	Rand *rand.Rand `json:"-"`

	// Concurrency control
	Mu sync.Mutex `json:"-"`
}

// RoomState is the full snapshot broadcast as "room-data".
type RoomState struct {
	Id          string       `json:"id"`
	Players     []Player     `json:"players"`
	Board       []Cell       `json:"board"`
	Started     bool         `json:"started"`
	Turn        Team         `json:"turn"`
	Clue        *Clue        `json:"clue"`
	ClueTeam    Team         `json:"clue_team"`
	GuessesLeft int          `json:"guesses_left"`
	Scores      map[Team]int `json:"scores"`
	Winner      Team         `json:"winner"`
	CreatorId   string       `json:"creator_id"`
}

// RoomRecord is the durable row kept for each room.
type RoomRecord struct {
	Id         string    `json:"id"`
	Creator    string    `json:"creator"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	Active     bool      `json:"active"`
}

