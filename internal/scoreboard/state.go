package scoreboard

// GameState is the canonical scoreboard snapshot. Field names follow the
// wire/file format consumed by the board and operation clients.
type GameState struct {
	GameTitle   string `json:"game_title"`
	TeamTop     string `json:"team_top"`
	TeamBottom  string `json:"team_bottom"`
	GameInning  int    `json:"game_inning"`
	Top         bool   `json:"top"`
	FirstBase   bool   `json:"first_base"`
	SecondBase  bool   `json:"second_base"`
	ThirdBase   bool   `json:"third_base"`
	BallCount   int    `json:"ball_cnt"`
	StrikeCount int    `json:"strike_cnt"`
	OutCount    int    `json:"out_cnt"`
	ScoreTop    int    `json:"score_top"`
	ScoreBottom int    `json:"score_bottom"`
	LastInning  int    `json:"last_inning"`
}
