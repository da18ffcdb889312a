package models

import (
	"encoding/json"
	"slices"
	"time"
)

// Role is the position a contributor held when giving ("cargo").
type Role string

const (
	RolePastor      Role = "Pastor"
	RoleDeacon      Role = "Diácono"
	RoleLeader      Role = "Dirigente"
	RoleCoordinator Role = "Coordenador"
	RoleMember      Role = "Membro comum"
)

var roles = []Role{RolePastor, RoleDeacon, RoleLeader, RoleCoordinator, RoleMember}

// Roles returns the fixed role list in display order.
func Roles() []Role {
	return slices.Clone(roles)
}

func (r Role) Valid() bool {
	return slices.Contains(roles, r)
}

var rolePlurals = map[Role]string{
	RolePastor:      "Pastores",
	RoleDeacon:      "Diáconos",
	RoleLeader:      "Dirigentes",
	RoleCoordinator: "Coordenadores",
	RoleMember:      "Membros comuns",
}

// Plural returns the display plural; unknown roles get a trailing "s".
func (r Role) Plural() string {
	if p, ok := rolePlurals[r]; ok {
		return p
	}
	return string(r) + "s"
}

// Tithe is one recorded contribution. Member is free text checked against
// the directory when the entry is created, not a foreign key.
type Tithe struct {
	ID          string    `json:"_id,omitempty"`
	Member      string    `json:"membro"`
	Amount      Money     `json:"valor"`
	Role        Role      `json:"cargo"`
	Description string    `json:"descricao,omitempty"`
	Date        time.Time `json:"data"`
}

// MonthlySummary is the remote's aggregate for one month of a year.
type MonthlySummary struct {
	Month   int   `json:"mes"`
	Inflow  Money `json:"entrada"`
	Outflow Money `json:"saida"`
}

// Net is inflow minus outflow.
func (s MonthlySummary) Net() Money {
	return s.Inflow.Sub(s.Outflow)
}

// AnnualSummary is the yearly total. The remote answers either
// {"total": n} or a bare number.
type AnnualSummary struct {
	Total Money `json:"total"`
}

func (a *AnnualSummary) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '{' {
		var obj struct {
			Total Money `json:"total"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		a.Total = obj.Total
		return nil
	}
	return a.Total.UnmarshalJSON(b)
}
