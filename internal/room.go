package internal

import (
	"math/rand/v2"
	"slices"
)

type GamePhase string

const (
	PhaseLobby      GamePhase = "lobby"
	PhaseInProgress GamePhase = "in_progress"
	PhaseFinished   GamePhase = "finished"
)

// NewRoom builds a room around its creator with a freshly dealt board and a
// random starting team.
func NewRoom(id string, creator *Player, pool []string, rng *rand.Rand) (*Room, error) {
	r := &Room{
		Id:        id,
		Players:   []*Player{creator},
		CreatorId: creator.Id,
		Rand:      rng,
	}
	if err := r.deal(pool, randomTeam(rng)); err != nil {
		return nil, err
	}
	r.Turn = r.StartingTeam
	return r, nil
}

// Methods (Room Struct)
// All transitions expect the caller to hold r.Mu. A Rejected result means
// nothing changed.

func (r *Room) Phase() GamePhase {
	switch {
	case len(r.Board) == 0:
		return PhaseLobby
	case r.Winner != TeamUnset:
		return PhaseFinished
	default:
		return PhaseInProgress
	}
}

func (r *Room) FindPlayer(id string) *Player {
	for _, p := range r.Players {
		if p.Id == id {
			return p
		}
	}
	return nil
}

func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// Score returns the number of unrevealed cells left for t.
func (r *Room) Score(t Team) int {
	switch t {
	case TeamRed:
		return r.ScoreRed
	case TeamBlue:
		return r.ScoreBlue
	}
	return 0
}

// AddPlayer attaches a connection to the room. A connection already present
// is left alone, which makes rejoin idempotent.
func (r *Room) AddPlayer(id, nickname string) Result {
	if r.FindPlayer(id) != nil {
		return Rejected
	}
	r.Players = append(r.Players, NewPlayer(id, nickname))
	return Changed
}

func (r *Room) RemovePlayer(id string) Result {
	before := len(r.Players)
	r.Players = slices.DeleteFunc(r.Players, func(p *Player) bool {
		return p.Id == id
	})
	if len(r.Players) == before {
		return Rejected
	}
	return Changed
}

// SetRole is accepted at any point of the game. Only one spymaster per team.
func (r *Room) SetRole(playerId string, role Role, team Team) Result {
	if !role.Valid() || !team.Valid() {
		return Rejected
	}
	player := r.FindPlayer(playerId)
	if player == nil {
		return Rejected
	}
	if role == RoleSpymaster && r.spymasterOf(team) != nil {
		return Rejected
	}
	player.Role = role
	player.Team = team
	return Changed
}

// SetClue opens a guessing window of number+1 reveals for the turn team.
// A clue can never cover more than the whole board.
func (r *Room) SetClue(playerId, text string, number int) Result {
	if r.Winner != TeamUnset || r.Clue != nil || number < 0 || number > BoardSize {
		return Rejected
	}
	player := r.FindPlayer(playerId)
	if player == nil || !player.IsSpymasterOf(r.Turn) {
		return Rejected
	}

	r.Clue = &Clue{Text: text, Number: number}
	r.ClueTeam = player.Team
	r.GuessesLeft = number + BonusGuesses
	return Changed
}

func (r *Room) RevealWord(playerId, word string) Result {
	if r.Winner != TeamUnset || r.GuessesLeft <= 0 {
		return Rejected
	}
	player := r.FindPlayer(playerId)
	if player == nil || !player.IsOperativeOf(r.Turn) {
		return Rejected
	}
	idx := slices.IndexFunc(r.Board, func(c Cell) bool { return c.Word == word })
	if idx < 0 || r.Board[idx].Revealed {
		return Rejected
	}

	cell := &r.Board[idx]
	cell.Revealed = true

	switch cell.Role {
	case CellAssassin:
		r.Winner = r.Turn.Other()
	case CellRoleFor(r.Turn):
		r.decrementScore(r.Turn)
		r.GuessesLeft--
		if r.Score(r.Turn) == 0 {
			r.Winner = r.Turn
		} else if r.GuessesLeft == 0 {
			r.Turn = r.Turn.Other()
		}
	default:
		// Neutral or opponent cell ends the turn outright. An opponent cell
		// still counts for its owner.
		if cell.Role == CellRoleFor(r.Turn.Other()) {
			r.decrementScore(r.Turn.Other())
			if r.Score(r.Turn.Other()) == 0 {
				r.Winner = r.Turn.Other()
			}
		}
		r.Turn = r.Turn.Other()
		r.GuessesLeft = 0
	}

	if r.Winner != TeamUnset || r.GuessesLeft == 0 {
		r.clearClue()
		r.GuessesLeft = 0
	}
	return Changed
}

// EndTurn is a voluntary pass by any member of the room.
func (r *Room) EndTurn(playerId string) Result {
	if r.Winner != TeamUnset || r.FindPlayer(playerId) == nil {
		return Rejected
	}
	r.Turn = r.Turn.Other()
	r.clearClue()
	r.GuessesLeft = 0
	return Changed
}

// Reset deals a new board where the current turn team holds 9 cells, hands
// the turn to the other team and sends every player back to operative.
// Teams are kept. On a board error the room is left untouched.
func (r *Room) Reset(pool []string) (Result, error) {
	starting := r.Turn
	if !starting.Valid() {
		starting = randomTeam(r.Rand)
	}
	if err := r.deal(pool, starting); err != nil {
		return Rejected, err
	}
	r.Turn = starting.Other()
	for _, p := range r.Players {
		p.ResetRole()
	}
	return Changed, nil
}

// NewGame re-rolls the starting team and deals a new board. Roles and teams
// are kept.
func (r *Room) NewGame(pool []string) (Result, error) {
	starting := randomTeam(r.Rand)
	if err := r.deal(pool, starting); err != nil {
		return Rejected, err
	}
	r.Turn = starting
	return Changed, nil
}

// Snapshot copies the room into a value safe to hand over once r.Mu is released.
func (r *Room) Snapshot() RoomState {
	players := make([]Player, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, CreatePlayerSnapshot(p))
	}
	var clue *Clue
	if r.Clue != nil {
		c := *r.Clue
		clue = &c
	}
	return RoomState{
		Id:          r.Id,
		Players:     players,
		Board:       slices.Clone(r.Board),
		Started:     r.Phase() != PhaseLobby,
		Turn:        r.Turn,
		Clue:        clue,
		ClueTeam:    r.ClueTeam,
		GuessesLeft: r.GuessesLeft,
		Scores: map[Team]int{
			TeamRed:  r.ScoreRed,
			TeamBlue: r.ScoreBlue,
		},
		Winner:    r.Winner,
		CreatorId: r.CreatorId,
	}
}

// deal replaces the board and clears all per-game state. Turn is left to the caller.
func (r *Room) deal(pool []string, starting Team) error {
	board, err := GenerateBoard(pool, starting, r.Rand)
	if err != nil {
		return err
	}
	r.Board = board
	r.StartingTeam = starting
	r.Winner = TeamUnset
	r.GuessesLeft = 0
	r.clearClue()
	r.ScoreRed = CountUnrevealed(board, CellRed)
	r.ScoreBlue = CountUnrevealed(board, CellBlue)
	return nil
}

func (r *Room) spymasterOf(t Team) *Player {
	for _, p := range r.Players {
		if p.IsSpymasterOf(t) {
			return p
		}
	}
	return nil
}

func (r *Room) decrementScore(t Team) {
	switch t {
	case TeamRed:
		r.ScoreRed--
	case TeamBlue:
		r.ScoreBlue--
	}
}

func (r *Room) clearClue() {
	r.Clue = nil
	r.ClueTeam = TeamUnset
}

func randomTeam(rng *rand.Rand) Team {
	if rng.IntN(2) == 0 {
		return TeamRed
	}
	return TeamBlue
}
