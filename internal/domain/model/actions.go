package model

// Volleyball actions.
const (
	ActionAttack         Action = "attack"
	ActionAce            Action = "ace"
	ActionBlock          Action = "block"
	ActionBidouille      Action = "bidouille"
	ActionSecondeMain    Action = "seconde_main"
	ActionOtherOffensive Action = "other_offensive"

	ActionOut              Action = "out"
	ActionNetFault         Action = "net_fault"
	ActionServiceMiss      Action = "service_miss"
	ActionBlockOut         Action = "block_out"
	ActionGameplayFault    Action = "gameplay_fault"
	ActionOtherVolleyFault Action = "other_volley_fault"

	ActionReception          Action = "reception"
	ActionPass               Action = "pass"
	ActionDefense            Action = "defense"
	ActionOtherVolleyNeutral Action = "other_volley_neutral"
)

// Tennis actions.
const (
	ActionTennisAce         Action = "tennis_ace"
	ActionWinnerForehand    Action = "winner_forehand"
	ActionWinnerBackhand    Action = "winner_backhand"
	ActionVolleyWinner      Action = "volley_winner"
	ActionSmash             Action = "smash"
	ActionDropShotWinner    Action = "drop_shot_winner"
	ActionOtherTennisWinner Action = "other_tennis_winner"

	ActionDoubleFault           Action = "double_fault"
	ActionUnforcedErrorForehand Action = "unforced_error_forehand"
	ActionUnforcedErrorBackhand Action = "unforced_error_backhand"
	ActionNetError              Action = "net_error"
	ActionOutLong               Action = "out_long"
	ActionOutWide               Action = "out_wide"

	ActionTennisRally Action = "tennis_rally"
)

// Padel actions.
const (
	ActionPadelAce         Action = "padel_ace"
	ActionVibora           Action = "vibora"
	ActionBandeja          Action = "bandeja"
	ActionSmashPadel       Action = "smash_padel"
	ActionVolee            Action = "volee"
	ActionBajada           Action = "bajada"
	ActionChiquitaWinner   Action = "chiquita_winner"
	ActionPar3             Action = "par_3"
	ActionOtherPadelWinner Action = "other_padel_winner"

	ActionPadelDoubleFault Action = "padel_double_fault"
	ActionPadelNetError    Action = "padel_net_error"
	ActionPadelOut         Action = "padel_out"
	ActionGrilleError      Action = "grille_error"
	ActionVitreError       Action = "vitre_error"
	ActionPadelUnforced    Action = "padel_unforced_error"

	ActionPadelRally Action = "padel_rally"
)

// Basketball actions.
const (
	ActionFreeThrow   Action = "free_throw"
	ActionTwoPoints   Action = "two_points"
	ActionThreePoints Action = "three_points"

	ActionMissedShot    Action = "missed_shot"
	ActionTurnover      Action = "turnover"
	ActionFoulCommitted Action = "foul_committed"

	ActionRebound Action = "rebound"
	ActionAssist  Action = "assist"
)
