package sport

import (
	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/scoring"
	"github.com/okian/courtside/internal/domain/zone"
)

func scored(a model.Action, label, sigil string) ActionDef {
	return ActionDef{Action: a, Type: model.TypeScored, Label: label, Sigil: sigil}
}

func fault(a model.Action, label, sigil string) ActionDef {
	return ActionDef{Action: a, Type: model.TypeFault, Label: label, Sigil: sigil}
}

func neutral(a model.Action, label, sigil string) ActionDef {
	return ActionDef{Action: a, Type: model.TypeNeutral, Label: label, Sigil: sigil}
}

func auto(d ActionDef) ActionDef {
	d.AutoResolve = true
	return d
}

func valued(d ActionDef, v int) ActionDef {
	d.Value = v
	return d
}

var volleyball = &rules{
	sport:  model.SportVolleyball,
	zones:  zone.Volleyball{},
	period: "Set",
	scorer: scoring.Tally,
	actions: []ActionDef{
		scored(model.ActionAttack, "Attack", "AT"),
		scored(model.ActionAce, "Ace", "AC"),
		scored(model.ActionBlock, "Block", "BK"),
		scored(model.ActionBidouille, "Tip", "TP"),
		scored(model.ActionSecondeMain, "Second hand", "SH"),
		scored(model.ActionOtherOffensive, "Other", "OT"),
		fault(model.ActionOut, "Out", "OU"),
		fault(model.ActionNetFault, "Net", "NT"),
		auto(fault(model.ActionServiceMiss, "Service miss", "SM")),
		fault(model.ActionBlockOut, "Block out", "BO"),
		fault(model.ActionGameplayFault, "Gameplay fault", "GF"),
		fault(model.ActionOtherVolleyFault, "Other", "OF"),
		neutral(model.ActionReception, "Reception", "RC"),
		neutral(model.ActionPass, "Pass", "PS"),
		neutral(model.ActionDefense, "Defense", "DF"),
		neutral(model.ActionOtherVolleyNeutral, "Other", "ON"),
	},
}

var tennis = &rules{
	sport:  model.SportTennis,
	zones:  zone.Tennis{},
	period: "Set",
	games:  true,
	actions: []ActionDef{
		scored(model.ActionTennisAce, "Ace", "AC"),
		scored(model.ActionWinnerForehand, "Forehand winner", "FW"),
		scored(model.ActionWinnerBackhand, "Backhand winner", "BW"),
		scored(model.ActionVolleyWinner, "Volley winner", "VW"),
		scored(model.ActionSmash, "Smash", "SM"),
		scored(model.ActionDropShotWinner, "Drop shot", "DS"),
		scored(model.ActionOtherTennisWinner, "Other", "OT"),
		auto(fault(model.ActionDoubleFault, "Double fault", "DF")),
		fault(model.ActionUnforcedErrorForehand, "Forehand error", "FE"),
		fault(model.ActionUnforcedErrorBackhand, "Backhand error", "BE"),
		fault(model.ActionNetError, "Net", "NT"),
		fault(model.ActionOutLong, "Out long", "OL"),
		fault(model.ActionOutWide, "Out wide", "OW"),
		neutral(model.ActionTennisRally, "Rally shot", "RS"),
	},
}

var padel = &rules{
	sport:  model.SportPadel,
	zones:  zone.Padel{},
	period: "Set",
	games:  true,
	actions: []ActionDef{
		scored(model.ActionPadelAce, "Ace", "AC"),
		scored(model.ActionVibora, "Vibora", "VI"),
		scored(model.ActionBandeja, "Bandeja", "BA"),
		scored(model.ActionSmashPadel, "Smash", "SM"),
		scored(model.ActionVolee, "Volley", "VO"),
		scored(model.ActionBajada, "Bajada", "BJ"),
		scored(model.ActionChiquitaWinner, "Chiquita", "CH"),
		scored(model.ActionPar3, "Por tres", "P3"),
		scored(model.ActionOtherPadelWinner, "Other", "OT"),
		auto(fault(model.ActionPadelDoubleFault, "Double fault", "DF")),
		fault(model.ActionPadelNetError, "Net", "NT"),
		fault(model.ActionPadelOut, "Out", "OU"),
		fault(model.ActionGrilleError, "Grille", "GR"),
		fault(model.ActionVitreError, "Glass", "VT"),
		fault(model.ActionPadelUnforced, "Unforced error", "UE"),
		neutral(model.ActionPadelRally, "Rally shot", "RS"),
	},
}

var basketball = &rules{
	sport:  model.SportBasketball,
	zones:  zone.Basketball{},
	period: "Quarter",
	scorer: scoring.Weighted,
	actions: []ActionDef{
		valued(scored(model.ActionFreeThrow, "Free throw", "FT"), 1),
		valued(scored(model.ActionTwoPoints, "Two points", "2P"), 2),
		valued(scored(model.ActionThreePoints, "Three points", "3P"), 3),
		fault(model.ActionMissedShot, "Missed shot", "MS"),
		fault(model.ActionTurnover, "Turnover", "TO"),
		fault(model.ActionFoulCommitted, "Foul", "FC"),
		neutral(model.ActionRebound, "Rebound", "RB"),
		neutral(model.ActionAssist, "Assist", "AS"),
	},
}
