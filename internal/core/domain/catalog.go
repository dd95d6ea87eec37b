package domain

const (
	AppName        = "Auto X Sri Lanka"
	AppDescription = "Heavy Vehicle & Material Platform"
)

var VehicleCategories = []string{
	"JCB",
	"Excavator",
	"Tipper",
	"Lorry",
	"Water Bowser",
	"Crane",
	"Concrete Mixer",
	"Road Roller",
}

var MaterialCategories = []string{
	"Sand",
	"Soil",
	"Gravel",
	"Metal",
	"Bricks",
	"Concrete",
	"Timber",
	"Cement",
}

var SriLankanDistricts = []string{
	"Colombo", "Gampaha", "Kalutara", "Kandy", "Matale", "Nuwara Eliya",
	"Galle", "Matara", "Hambantota", "Jaffna", "Kilinochchi", "Mannar",
	"Vavuniya", "Mullaitivu", "Batticaloa", "Ampara", "Trincomalee",
	"Kurunegala", "Puttalam", "Anuradhapura", "Polonnaruwa", "Badulla",
	"Moneragala", "Ratnapura", "Kegalle",
}

// Contains reports whether value is one of list, compared exactly.
func Contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
