package sos

// The Nabha-area emergency directory is static. There is no live registry
// of rural hospitals to query, so the numbers are curated by hand and
// reviewed with the district health office.

// Hospital is a facility in the emergency response payload.
type Hospital struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Distance string `json:"distance"`
}

// AmbulanceService lists the national ambulance line plus a local backup.
type AmbulanceService struct {
	Phone          string `json:"phone"`
	AlternatePhone string `json:"alternatePhone"`
}

// Contact is one national emergency helpline.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Response is the dispatch payload returned when an SOS is activated.
type Response struct {
	SOSID                 string           `json:"sosId"`
	Status                string           `json:"status"`
	EstimatedResponseTime string           `json:"estimatedResponseTime"`
	NearestHospital       Hospital         `json:"nearestHospital"`
	AmbulanceService      AmbulanceService `json:"ambulanceService"`
	EmergencyContacts     []Contact        `json:"emergencyContacts"`
}

// EmergencyResponse builds the dispatch payload for one SOS event.
func EmergencyResponse(sosID string) Response {
	return Response{
		SOSID:                 sosID,
		Status:                "received",
		EstimatedResponseTime: "10-15 minutes",
		NearestHospital: Hospital{
			Name:     "Civil Hospital Nabha",
			Phone:    "+91-1765-222222",
			Distance: "2.5 km",
		},
		AmbulanceService: AmbulanceService{
			Phone:          "108",
			AlternatePhone: "+91-1765-223344",
		},
		EmergencyContacts: []Contact{
			{Name: "Police", Phone: "100"},
			{Name: "Fire Brigade", Phone: "101"},
			{Name: "Ambulance", Phone: "108"},
		},
	}
}

// Service is one entry in the nearby-services directory.
type Service struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Phone         string   `json:"phone"`
	Address       string   `json:"address"`
	Distance      string   `json:"distance"`
	Services      []string `json:"services"`
	Available24x7 bool     `json:"available24x7"`
}

// NearbyServices returns the curated directory of hospitals, health
// centres, and pharmacies around Nabha.
func NearbyServices() []Service {
	return []Service{
		{
			ID:            "hospital_1",
			Name:          "Civil Hospital Nabha",
			Type:          "hospital",
			Phone:         "+91-1765-222222",
			Address:       "Hospital Road, Nabha, Punjab 147201",
			Distance:      "2.5 km",
			Services:      []string{"Emergency", "General Medicine", "Pediatrics"},
			Available24x7: true,
		},
		{
			ID:            "hospital_2",
			Name:          "CHC Bhadson",
			Type:          "health_center",
			Phone:         "+91-1765-233333",
			Address:       "Bhadson, Patiala, Punjab",
			Distance:      "8.2 km",
			Services:      []string{"Primary Care", "Emergency"},
			Available24x7: false,
		},
		{
			ID:            "pharmacy_1",
			Name:          "Apollo Pharmacy",
			Type:          "pharmacy",
			Phone:         "+91-1765-244444",
			Address:       "Main Market, Nabha, Punjab",
			Distance:      "1.8 km",
			Services:      []string{"Medicines", "24x7 Service"},
			Available24x7: true,
		},
	}
}
