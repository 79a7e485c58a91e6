package internal

import "time"

type Player struct {
	Id       string    `json:"id"`
	Nickname string    `json:"nickname"`
	Role     Role      `json:"role"`
	Team     Team      `json:"team"`
	JoinedAt time.Time `json:"joined_at"`
}

func NewPlayer(id, nickname string) *Player {
	return &Player{
		Id:       id,
		Nickname: nickname,
		JoinedAt: time.Now(),
	}
}

func (p *Player) IsSpymasterOf(t Team) bool {
	return p.Role == RoleSpymaster && p.Team == t
}

func (p *Player) IsOperativeOf(t Team) bool {
	return p.Role == RoleOperative && p.Team == t
}

// ResetRole drops the player back to operative, keeping the team.
func (p *Player) ResetRole() {
	p.Role = RoleOperative
}

func CreatePlayerSnapshot(p *Player) Player {
	return Player{
		Id:       p.Id,
		Nickname: p.Nickname,
		Role:     p.Role,
		Team:     p.Team,
		JoinedAt: p.JoinedAt,
	}
}
