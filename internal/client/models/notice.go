package models

// Notice is an entry of the church notice board.
type Notice struct {
	ID      string `json:"_id,omitempty"`
	Title   string `json:"titulo"`
	Message string `json:"mensagem"`
}

func ValidateNotice(n Notice) map[string]string {
	errs := map[string]string{}
	if trimmed(n.Title) == "" {
		errs["titulo"] = "Título é obrigatório"
	}
	if trimmed(n.Message) == "" {
		errs["mensagem"] = "Mensagem é obrigatória"
	}
	return errs
}
