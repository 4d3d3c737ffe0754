package night

// RoleId is the closed enumeration of role identities. Generalizes the
// wolverix Role enum (models.go) from its 11 roles to the full roster this
// engine drives; see DESIGN.md C1 and SPEC_FULL.md §F.
type RoleId string

const (
	RoleVillager     RoleId = "villager"
	RoleSeer         RoleId = "seer"
	RoleWitch        RoleId = "witch"
	RoleHunter       RoleId = "hunter"
	RoleGuard        RoleId = "guard"
	RoleGargoyle     RoleId = "gargoyle"
	RolePsychic      RoleId = "psychic"
	RoleMirrorSeer   RoleId = "mirror_seer"
	RoleDrunkSeer    RoleId = "drunk_seer"
	RolePureWhite    RoleId = "pure_white"
	RoleCelebrity    RoleId = "celebrity"
	RoleSpiritKnight RoleId = "spirit_knight"
	RoleDreamcatcher RoleId = "dreamcatcher"

	RoleWolf       RoleId = "wolf"
	RoleWolfQueen  RoleId = "wolf_queen"
	RoleWolfRobot  RoleId = "wolf_robot"
	RoleWolfWitch  RoleId = "wolf_witch"
	RoleNightmare  RoleId = "nightmare"

	RoleMagician RoleId = "magician"
	RolePiper    RoleId = "piper"
)

// Team is the closed win-condition grouping a role belongs to.
type Team string

const (
	TeamGood Team = "good"
	TeamWolf Team = "wolf"
)

// WolfMeetingMeta describes a role's participation in the nightly wolf
// meeting: whether it can see who the other wolves are, and whether its
// vote counts toward the wolf-kill tally. Not every wolf-team role
// participates in the vote (wolf-witch, by default, only observes).
type WolfMeetingMeta struct {
	CanSeeWolves           bool
	ParticipatesInWolfVote bool
}

// RoleDef is C1's per-role metadata row.
type RoleDef struct {
	ID   RoleId
	Team Team

	// WolfMeeting is nil for roles with no wolf-meeting involvement at all.
	WolfMeeting *WolfMeetingMeta

	HasNightAction bool

	ImmuneToWolfKill  bool
	Disguisable       bool
	HunterGatedOnLearn bool
}

var catalog = map[RoleId]RoleDef{
	RoleVillager: {ID: RoleVillager, Team: TeamGood},
	RoleSeer:     {ID: RoleSeer, Team: TeamGood, HasNightAction: true},
	RoleWitch:    {ID: RoleWitch, Team: TeamGood, HasNightAction: true},
	RoleHunter:   {ID: RoleHunter, Team: TeamGood},
	RoleGuard:    {ID: RoleGuard, Team: TeamGood, HasNightAction: true},
	RoleGargoyle: {ID: RoleGargoyle, Team: TeamGood, HasNightAction: true},
	RolePsychic:  {ID: RolePsychic, Team: TeamGood, HasNightAction: true},
	RoleMirrorSeer: {ID: RoleMirrorSeer, Team: TeamGood, HasNightAction: true},
	RoleDrunkSeer:  {ID: RoleDrunkSeer, Team: TeamGood, HasNightAction: true},
	RolePureWhite:  {ID: RolePureWhite, Team: TeamGood, HasNightAction: true},
	RoleCelebrity:  {ID: RoleCelebrity, Team: TeamGood, HasNightAction: true},
	RoleSpiritKnight: {ID: RoleSpiritKnight, Team: TeamGood, ImmuneToWolfKill: true},
	RoleDreamcatcher: {ID: RoleDreamcatcher, Team: TeamGood, HasNightAction: true},

	RoleWolf: {
		ID: RoleWolf, Team: TeamWolf, HasNightAction: true,
		WolfMeeting: &WolfMeetingMeta{CanSeeWolves: true, ParticipatesInWolfVote: true},
	},
	RoleWolfQueen: {
		ID: RoleWolfQueen, Team: TeamWolf, HasNightAction: true,
		WolfMeeting: &WolfMeetingMeta{CanSeeWolves: true, ParticipatesInWolfVote: true},
	},
	RoleWolfRobot: {
		ID: RoleWolfRobot, Team: TeamWolf, HasNightAction: true, Disguisable: true,
		WolfMeeting:        &WolfMeetingMeta{CanSeeWolves: true, ParticipatesInWolfVote: true},
		HunterGatedOnLearn: true,
	},
	RoleWolfWitch: {
		ID: RoleWolfWitch, Team: TeamWolf, HasNightAction: true,
		WolfMeeting: &WolfMeetingMeta{CanSeeWolves: true, ParticipatesInWolfVote: false},
	},
	RoleNightmare: {
		ID: RoleNightmare, Team: TeamWolf, HasNightAction: true,
		WolfMeeting: &WolfMeetingMeta{CanSeeWolves: true, ParticipatesInWolfVote: false},
	},

	RoleMagician: {ID: RoleMagician, Team: TeamGood, HasNightAction: true},
	RolePiper:    {ID: RolePiper, Team: TeamGood, HasNightAction: true},
}

// RoleDefOf returns the catalog row for a role. The zero value's ID is
// empty for an unknown role; callers that need to distinguish "unknown"
// should check ok.
func RoleDefOf(id RoleId) (RoleDef, bool) {
	d, ok := catalog[id]
	return d, ok
}

// TeamOf returns the role's win-condition team.
func TeamOf(id RoleId) Team {
	return catalog[id].Team
}

// DoesRoleParticipateInWolfVote reports whether the role's vote counts
// toward the wolf-kill tally.
func DoesRoleParticipateInWolfVote(id RoleId) bool {
	d := catalog[id]
	return d.WolfMeeting != nil && d.WolfMeeting.ParticipatesInWolfVote
}

// CanSeeWolves reports whether the role attends the wolf meeting as an
// observer (whether or not it votes).
func CanSeeWolves(id RoleId) bool {
	d := catalog[id]
	return d.WolfMeeting != nil && d.WolfMeeting.CanSeeWolves
}

// IsImmuneToWolfKill reports whether the role can never be the target of a
// wolf-kill vote (validator-layer pre-selection ban, spec.md §4.7 rule 7).
func IsImmuneToWolfKill(id RoleId) bool {
	return catalog[id].ImmuneToWolfKill
}

// HasNightAction reports whether the role has any night-1 behavior at all.
func HasNightAction(id RoleId) bool {
	return catalog[id].HasNightAction
}
