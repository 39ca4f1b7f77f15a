package generation

// SalesWisdom is one canned coaching tip. The entries and their wording are
// product content curated by the sales team.
type SalesWisdom struct {
	Situation string `json:"situation"`
	Quote     string `json:"quote"`
	Advice    string `json:"advice"`
}

var salesWisdom = []SalesWisdom{
	{
		Situation: "クロージングが弱い",
		Quote:     "クロージングに遠慮なんていらない！怖気づかずに、一気にいく！",
		Advice:    "「買ってください」と明確に言うこと。遠慮は敵。",
	},
	{
		Situation: "価格で負ける",
		Quote:     "価格について自分自身が邪魔にならないのは非常に難しい。あなたの顧客は全く異なる視点で同じ価格を見ている。",
		Advice:    "自分の価格に自信を持つこと。顧客はあなたより価格を気にしていない。",
	},
	{
		Situation: "反論に弱い",
		Quote:     "スキルが不足していて自信がない場合、割引に頼りがちになる。最初の反論を受けた瞬間にすぐに降参する傾向が顕著になる。",
		Advice:    "反論は「降参」ではなく「対話の機会」。価値を再提示する。",
	},
	{
		Situation: "フォローアップが弱い",
		Quote:     "1日目〜7日目は毎日送る。鉄は熱いうちに打て。",
		Advice:    "商談後、24時間以内にフォローアップを送ること。",
	},
	{
		Situation: "オファーが不明確",
		Quote:     "オファーがなければ、ダイレクトレスポンスではない。",
		Advice:    "「○○を△△円で提供します」と明確に伝えること。",
	},
	{
		Situation: "緊急性がない",
		Quote:     "供給が限られており、見込み客は手に入れることができないかもしれないと思わせることで、相手を行動へと駆り立てる。",
		Advice:    "限定性・緊急性を作る。「あと3名」「今週末まで」など。",
	},
}

func wisdomBySituation(situation string) *SalesWisdom {
	for i := range salesWisdom {
		if salesWisdom[i].Situation == situation {
			return &salesWisdom[i]
		}
	}
	return nil
}

// wisdomForArea maps the oracle's weakest-area tag to a canned tip. Each area
// tries its situations in a fixed priority order; anything unrecognized falls
// back to the first entry.
func wisdomForArea(area string) *SalesWisdom {
	var order []string
	switch area {
	case "offer":
		order = []string{"オファーが不明確", "緊急性がない"}
	case "closing":
		order = []string{"クロージングが弱い"}
	case "priceNegotiation":
		order = []string{"価格で負ける", "反論に弱い"}
	case "followUp":
		order = []string{"フォローアップが弱い"}
	}
	for _, situation := range order {
		if w := wisdomBySituation(situation); w != nil {
			return w
		}
	}
	return &salesWisdom[0]
}
