package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/google/uuid"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/app"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
)

type templates struct {
	game  *template.Template
	board *template.Template
	index *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"cellClass": func(c domain.Cell) string {
			cls := "square"
			if c.Active {
				cls += " active"
			}
			switch c.Occupant {
			case domain.First:
				cls += " playerX"
			case domain.Second:
				cls += " playerO"
			default:
				cls += " none"
			}
			if m := c.Mark.String(); m != "" {
				cls += " " + m
			}
			return cls
		},
	}
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
	template.Must(base.New("board").Funcs(funcs()).Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(indexTemplate))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events" sse-swap="board" hx-target="#board" hx-swap="outerHTML">
  {{template "board" .}}
</div>`))
	board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
	return &templates{game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	if name == "" {
		_ = t.Execute(&buf, data)
	} else {
		_ = t.ExecuteTemplate(&buf, name, data)
	}
	return buf.Bytes()
}

const indexTemplate = `<h1>Tic-Tac-Toe</h1>
<form action="/game" method="post">
  <select name="opponent">
    <option value="rules">Unbeatable</option>
    <option value="random">Random</option>
    <option value="none">Two players, one screen</option>
  </select>
  <select name="side">
    <option value="X">Play X (first)</option>
    <option value="O">Play O (second)</option>
  </select>
  <button>Create</button>
</form>`

const boardTemplate = `
<div id="board" data-status="{{.Status}}">
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <div class="status">{{.Message}}</div>
  <div class="grid">
  {{range .Cells}}
    <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
      <input type="hidden" name="square" value="{{.ID}}">
      <button id="square{{.ID}}" class="{{cellClass .}}" type="submit"{{if not .Active}} disabled{{end}}>{{.Occupant}}</button>
    </form>
  {{end}}
  </div>
  <form hx-post="/game/{{.ID}}/restart" hx-target="#board" hx-swap="outerHTML" method="post">
    <button type="submit">New game</button>
  </form>
</div>
`

// boardView is the data the board template renders.
type boardView struct {
	ID      string
	Cells   [9]domain.Cell
	Status  string
	Message string
	Error   string
}

func newBoardView(gs app.GameState, errMsg string) boardView {
	v := boardView{
		ID:     gs.ID,
		Cells:  gs.Board.Cells(),
		Status: gs.Board.Status().String(),
		Error:  errMsg,
	}
	// Squares are only clickable when the owner may move.
	if !gs.HumanToMove() {
		for i := range v.Cells {
			v.Cells[i].Active = false
		}
	}
	switch {
	case gs.Aborted:
		v.Message = "Game aborted"
	case gs.Board.IsDraw():
		v.Message = "Draw"
	case gs.Board.IsOver():
		v.Message = gs.Board.Winner().String() + " wins"
	default:
		v.Message = gs.Board.CurrentTurn().String() + " to move"
	}
	return v
}

// Helper to set cookie
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie("player_id"); err == nil && c.Value != "" {
		return c.Value
	}
	// Generate UUIDv4 for player ID
	v := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: "player_id", Value: v, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	// Make the new id visible to handlers later in this request.
	r.AddCookie(&http.Cookie{Name: "player_id", Value: v})
	return v
}
