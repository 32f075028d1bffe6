package archive

import (
	"sort"
	"strings"
)

const granicusBase = "https://sanfrancisco.granicus.com"

// Source identifies one archived government body or commission.
// The numeric view id uniquely determines every derived URL.
type Source struct {
	name string
	id   string
}

// viewIDs maps the symbolic source name to the archive's numeric view id.
// The table is read-only static data; a source's identity never changes.
var viewIDs = map[string]string{
	"ADDITIONAL_PROGRAMS":                    "74",
	"AGING_AND_ADULT_SERVICES":               "174",
	"ARTS_COMMISSION":                        "230",
	"ARTS_COMMISSION_COMMITTEE":              "233",
	"BOARD_OF_APPEALS":                       "6",
	"BOARD_OF_SUPERVISORS":                   "10",
	"BUDGET_AND_APPROPRIATIONS_COMMITTEE":    "207",
	"BUDGET_AND_FINANCE_COMMITTEE":           "7",
	"BUDGET_AND_FINANCE_FEDERAL_SELECT_COMMITTEE":            "190",
	"BUDGET_AND_FINANCE_SUB_COMMITTEE":                       "189",
	"BUILDING_INSPECTION_COMMISSION_ABATEMENT_APPEALS_BOARD": "14",
	"BUILDING_SF": "3",
	"CITIZENS_GENERAL_OBLIGATION_BOND_OVERSIGHT_COMMITTEE": "191",
	"CITY_AND_SCHOOL_DISTRICTS_SELECT_COMMITTEE":           "9",
	"CITY_EVENTS":              "90",
	"CITY_EVENTS_INFO_SUMMITS": "74",
	"CITY_INFORMATION":         "89",
	"CITY_OPERATIONS_AND_NEIGHBORHOOD_SERVICES_COMMITTEE": "8",
	"CITY_SUMMITS":                "88",
	"COMMISSIONS_COUNCILS_BOARDS": "20",
	"COMMONWEALTH_CLUB":           "143",
	"COMMUNITY_INVESTMENT_AND_INFRASTRUCTURE_COMMISSION": "169",
	"DISABILITY_AND_AGING_SERVICES_COMMISSION":           "206",
	"DISASTER_COUNCIL":             "15",
	"EDUCATION_SFUSD_BOARD_OF":     "47",
	"ELECTION_PROGRAMMING":         "42",
	"ELECTION_PROGRAMMING_ARCHIVE": "200",
	"ENTERTAINMENT_COMMISSION":     "99",
	"ENVIRONMENT_COMMISSION_ON_THE": "165",
	"ETHICS_COMMISSION":             "142",
	"FIRE_COMMISSION":               "180",
	"GOVERNMENT_AUDIT_AND_OVERSIGHT_COMMITTEE":      "11",
	"HEALTH_COMMISSION_DEPARTMENT_OF_PUBLIC_HEALTH": "171",
	"HEALTH_SERVICE_BOARD":                          "168",
	"HISTORIC_PRESERVATION_COMMISSION":              "166",
	"HOMELESSNESS_AND_BEHAVIORAL_HEALTH_SELECT_COMMITTEE": "225",
	"HOMELESSNESS_OVERSIGHT_COMMISSION":                   "227",
	"HOUSING_AUTHORITY_BOARD_OF_DIRECTORS":                "229",
	"HUMAN_RIGHTS_COMMISSION":                             "156",
	"JOINT_CITY_SCHOOL_DISTRICT_AND_CITY_COLLEGE_SELECT_COMMITTEE": "203",
	"LAND_USE_AND_ECONOMIC_DEVELOPMENT_COMMITTEE":                  "12",
	"LAND_USE_AND_TRANSPORTATION_COMMITTEE":                        "177",
	"LOCAL_AGENCY_FORMATION_COMMISSION":                            "16",
	"MAIN_STAGE":                      "57",
	"MAYOR_BREED_ARCHIVE":             "235",
	"MAYOR_FARRELL_ARCHIVE":           "198",
	"MAYOR_LEE_ARCHIVE":               "197",
	"MAYOR_NEWSOM_ARCHIVE":            "106",
	"MAYORS_DISABILITY_COUNCIL":       "17",
	"MAYORS_PRESS_CONFERENCE":         "18",
	"MEET_YOUR_DISTRICT_SUPERVISOR":   "107",
	"MUNICIPAL_TRANSPORTATION_AGENCY_SFMTA":         "55",
	"NEIGHBORHOOD_SERVICES_AND_SAFETY_COMMITTEE":    "164",
	"OUR_CITY_OUR_HOME_OVERSIGHT_COMMITTEE":         "209",
	"PLANNING_COMMISSION":                           "20",
	"POLICE_COMMISSION":                             "21",
	"PORT_COMMISSION":                               "92",
	"PRESS_CONFERENCE":                              "38",
	"PUBLIC_SAFETY_AND_NEIGHBORHOOD_SERVICES_COMMITTEE": "178",
	"PUBLIC_SAFETY_COMMITTEE":                           "44",
	"PUBLIC_UTILITIES_COMMISSION":                       "22",
	"PUBLIC_WORKS_COMMISSION":                           "218",
	"RECREATION_AND_PARK_COMMISSION":                    "91",
	"REDISTRICTING_TASK_FORCE":                          "155",
	"REFUSE_RATE_BOARD":                                 "226",
	"RETIREMENT_BOARD_SAN_FRANCISCO_EMPLOYEES":          "175",
	"RULES_COMMITTEE":                                   "13",
	"SANITATION_STREETS_COMMISSION":                     "219",
	"SHERIFFS_DEPARTMENT_OVERSIGHT_BOARD":               "223",
	"SMALL_BUSINESS_COMMISSION":                         "45",
	"TAXICAB_COMMISSION":                                "28",
	"TRANSBAY_JOINT_POWERS_AUTHORITY_BOARD_OF_DIRECTORS": "29",
	"TRANSPORTATION_AUTHORITY_FINANCE_COMMITTEE":         "23",
	"TRANSPORTATION_AUTHORITY_FULL_BOARD":                "24",
	"TRANSPORTATION_AUTHORITY_PERSONNEL_COMMITTEE":       "27",
	"TRANSPORTATION_AUTHORITY_PLANS_PROGRAMS_COMMITTEE":  "25",
	"TRANSPORTATION_AUTHORITY_VISION_ZERO_COMMITTEE":     "172",
	"TREASURE_ISLAND_DEVELOPMENT_AUTHORITY":              "181",
	"TREASURE_ISLAND_DEVELOPMENT_AUTHORITY_COMMITTEE":    "193",
	"TREASURE_ISLAND_MOBILITY_MANAGEMENT_AGENCY":         "179",
	"VARIOUS_COMMISSIONS":                                "30",
	"YOUTH_YOUNG_ADULT_AND_FAMILIES_COMMITTEE":           "211",
}

// FromString looks up a source by its symbolic name. The lookup is
// case-insensitive and accepts dashes in place of underscores.
func FromString(name string) (Source, bool) {
	key := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	id, ok := viewIDs[key]
	if !ok {
		return Source{}, false
	}
	return Source{name: key, id: id}, true
}

// All returns every known source, ordered by name.
func All() []Source {
	names := make([]string, 0, len(viewIDs))
	for name := range viewIDs {
		names = append(names, name)
	}
	sort.Strings(names)

	sources := make([]Source, len(names))
	for i, name := range names {
		sources[i] = Source{name: name, id: viewIDs[name]}
	}
	return sources
}

// Name returns the symbolic source name, e.g. "BOARD_OF_SUPERVISORS".
func (s Source) Name() string { return s.name }

// ID returns the archive's numeric view id for the source.
func (s Source) ID() string { return s.id }

// IsZero reports whether the source is the zero value.
func (s Source) IsZero() bool { return s.name == "" }

// URL returns the archive's listing page for the source.
func (s Source) URL() string {
	return granicusBase + "/ViewPublisher.php?view_id=" + s.id
}

// AudioFeedURL returns the source's podcast (audio) feed URL.
func (s Source) AudioFeedURL() string {
	return granicusBase + "/Podcast.php?view_id=" + s.id
}

// VideoFeedURL returns the source's video feed URL.
func (s Source) VideoFeedURL() string {
	return granicusBase + "/ViewPublisherRSS.php?view_id=" + s.id
}

// AgendaFeedURL returns the source's agenda feed URL.
func (s Source) AgendaFeedURL() string {
	return granicusBase + "/ViewPublisherRSS.php?view_id=" + s.id + "&mode=agendas"
}

// PlayerURL formats the embeddable player URL for a clip published under
// the given view id.
func PlayerURL(viewID, clipID string) string {
	return granicusBase + "/player/clip/" + clipID + "?view_id=" + viewID + "&embed=1"
}
