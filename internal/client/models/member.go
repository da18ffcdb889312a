package models

import (
	"slices"
	"strings"
	"time"
)

// DateLayout is the wire and form format of member dates.
const DateLayout = "2006-01-02"

// Member is a person registered in a tenant's directory.
type Member struct {
	ID            string `json:"_id,omitempty"`
	Name          string `json:"nome"`
	BirthDate     string `json:"nascimento"`
	Address       string `json:"endereco,omitempty"`
	Neighborhood  string `json:"bairro,omitempty"`
	Parents       string `json:"filiacao,omitempty"`
	MaritalStatus string `json:"estadocivil,omitempty"`
	NationalID    string `json:"cpf"`
	Area          string `json:"area,omitempty"`
	Congregation  string `json:"congregacao,omitempty"`
	Leader        string `json:"dirigente,omitempty"`
	ConversionAt  string `json:"conversao,omitempty"`
	Function      string `json:"funcao,omitempty"`
	Discipleship  string `json:"discipulado,omitempty"`
	BaptismAt     string `json:"batismo"`
	Church        string `json:"igreja,omitempty"`
}

// Normalize trims text fields and cuts ISO timestamps such as
// "1990-05-01T00:00:00.000Z" down to their date part.
func (m Member) Normalize() Member {
	for _, f := range MemberFields {
		v := trimmed(f.Get(&m))
		if f.Kind == KindDate {
			v, _, _ = strings.Cut(v, "T")
		}
		f.Set(&m, v)
	}
	return m
}

// FieldKind tags how a member field is entered and validated.
type FieldKind string

const (
	KindText FieldKind = "text"
	KindDate FieldKind = "date"
	KindEnum FieldKind = "enum"
)

// FieldSpec declares one member attribute. The CLI form and ValidateMember
// both read MemberFields, so there is exactly one list to keep in sync.
type FieldSpec struct {
	Name        string
	Label       string
	Placeholder string
	Kind        FieldKind
	Options     []string
	Required    bool

	get func(*Member) *string
}

func (f FieldSpec) Get(m *Member) string    { return *f.get(m) }
func (f FieldSpec) Set(m *Member, v string) { *f.get(m) = v }

var (
	MaritalStatuses   = []string{"Solteiro(a)", "Casado(a)", "Viúvo", "Divorciado"}
	DiscipleshipFlags = []string{"Sim Fiz", "Não Fiz"}
)

var MemberFields = []FieldSpec{
	{Name: "nome", Label: "Nome", Placeholder: "Digite o nome completo", Kind: KindText, Required: true,
		get: func(m *Member) *string { return &m.Name }},
	{Name: "nascimento", Label: "Nascimento", Placeholder: "Selecione a data de nascimento", Kind: KindDate, Required: true,
		get: func(m *Member) *string { return &m.BirthDate }},
	{Name: "endereco", Label: "Endereço", Placeholder: "Digite o endereço", Kind: KindText,
		get: func(m *Member) *string { return &m.Address }},
	{Name: "bairro", Label: "Bairro", Placeholder: "Digite o bairro", Kind: KindText,
		get: func(m *Member) *string { return &m.Neighborhood }},
	{Name: "filiacao", Label: "Filiação", Placeholder: "Digite a filiação (Pai/Mãe)", Kind: KindText,
		get: func(m *Member) *string { return &m.Parents }},
	{Name: "estadocivil", Label: "Estado civil", Placeholder: "Selecione o estado civil", Kind: KindEnum, Options: MaritalStatuses,
		get: func(m *Member) *string { return &m.MaritalStatus }},
	{Name: "cpf", Label: "CPF", Placeholder: "Digite o CPF", Kind: KindText, Required: true,
		get: func(m *Member) *string { return &m.NationalID }},
	{Name: "area", Label: "Área", Placeholder: "Digite a área de atuação", Kind: KindText,
		get: func(m *Member) *string { return &m.Area }},
	{Name: "congregacao", Label: "Congregação", Placeholder: "Digite a congregação", Kind: KindText,
		get: func(m *Member) *string { return &m.Congregation }},
	{Name: "dirigente", Label: "Dirigente", Placeholder: "Digite o nome do dirigente", Kind: KindText,
		get: func(m *Member) *string { return &m.Leader }},
	{Name: "conversao", Label: "Conversão", Placeholder: "Selecione a data da conversão", Kind: KindDate,
		get: func(m *Member) *string { return &m.ConversionAt }},
	{Name: "funcao", Label: "Função", Placeholder: "Digite a função", Kind: KindText,
		get: func(m *Member) *string { return &m.Function }},
	{Name: "discipulado", Label: "Discipulado", Placeholder: "Selecione se fez discipulado", Kind: KindEnum, Options: DiscipleshipFlags,
		get: func(m *Member) *string { return &m.Discipleship }},
	{Name: "batismo", Label: "Batismo", Placeholder: "Selecione a data do batismo", Kind: KindDate, Required: true,
		get: func(m *Member) *string { return &m.BaptismAt }},
}

// ValidateMember checks m against MemberFields and returns field-level
// messages keyed by wire name. An empty map means valid.
func ValidateMember(m Member) map[string]string {
	errs := map[string]string{}
	for _, f := range MemberFields {
		v := trimmed(f.Get(&m))
		if v == "" {
			if f.Required {
				errs[f.Name] = f.Label + " é obrigatório"
			}
			continue
		}
		switch f.Kind {
		case KindDate:
			if _, err := time.Parse(DateLayout, v); err != nil {
				errs[f.Name] = f.Label + " deve estar no formato AAAA-MM-DD"
			}
		case KindEnum:
			if !slices.Contains(f.Options, v) {
				errs[f.Name] = f.Label + " inválido"
			}
		}
	}
	return errs
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
