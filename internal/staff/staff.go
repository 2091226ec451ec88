package staff

// Role is a staff member's position in the salon.
type Role string

const (
	RoleStoreManager Role = "store_manager"
	RoleSeniorTech   Role = "senior_tech"
	RoleJuniorTech   Role = "junior_tech"
	RoleMetaphysics  Role = "metaphysics"
)

// Staff is a member of the roster.
type Staff struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Role   Role     `json:"role"`
	Titles []string `json:"titles"`
	Color  string   `json:"color"`
	Avatar string   `json:"avatar"`
	// Rostered staff appear on the shift schedule.
	Rostered bool `json:"rostered"`
}

// Roster is the known staff list, in display order.
type Roster []Staff

// Find returns the staff member with the given id.
func (r Roster) Find(id string) (Staff, bool) {
	for _, s := range r {
		if s.ID == id {
			return s, true
		}
	}
	return Staff{}, false
}

// Contains reports whether id belongs to the roster.
func (r Roster) Contains(id string) bool {
	_, ok := r.Find(id)
	return ok
}

// Scheduled returns the staff that take shifts.
func (r Roster) Scheduled() Roster {
	out := make(Roster, 0, len(r))
	for _, s := range r {
		if s.Rostered {
			out = append(out, s)
		}
	}
	return out
}

const avatarBase = "https://api.dicebear.com/7.x/avataaars/svg?seed="

// DefaultRoster returns the salon's staff list.
func DefaultRoster() Roster {
	return Roster{
		{ID: "s1", Name: "露露 (Lulu)", Role: RoleStoreManager, Titles: []string{"店长", "资深美甲师", "美睫师"}, Color: "#E8DCC4", Avatar: avatarBase + "Lulu&backgroundColor=E8DCC4", Rostered: true},
		{ID: "s2", Name: "芊芊 (Qianqian)", Role: RoleSeniorTech, Titles: []string{"高级美甲师", "美睫师"}, Color: "#D8DFD0", Avatar: avatarBase + "Qianqian&backgroundColor=D8DFD0", Rostered: true},
		{ID: "s3", Name: "果果 (Guoguo)", Role: RoleJuniorTech, Titles: []string{"初级美甲师"}, Color: "#E6D4D4", Avatar: avatarBase + "Guoguo&backgroundColor=E6D4D4", Rostered: true},
		{ID: "s4", Name: "Amber", Role: RoleMetaphysics, Titles: []string{"店长", "玄学顾问"}, Color: "#F2E6D0", Avatar: avatarBase + "Amber&backgroundColor=F2E6D0"},
	}
}
