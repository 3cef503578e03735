package catalog

func init() {
	RegisterListType(ListType{
		Name: "Target Lists",
		Kind: KindTargetList,
		Template: Template{
			Headers: []string{
				"hcp_code", "full_name", "gender", "qualification", "specialty",
				"designation", "email", "phone", "hospital_name", "city",
				"state", "category", "therapy_area", "priority",
			},
			SampleRows: [][]string{
				{"HCP001", "Dr. Rohan Mehta", "male", "MD", "Cardiology", "Senior Consultant", "rohan.mehta@example.com", "9876543210", "City Heart Hospital", "Noida", "UP", "A", "Cardiology", "true"},
				{"HCP002", "Dr. Sneha Kapoor", "female", "MS", "Gynecology", "Consultant", "sneha.kapoor@example.com", "9876543211", "Apollo Women Care", "Delhi", "Delhi", "B", "Women's Health", "false"},
			},
			Filename: "target_lists_sample.csv",
		},
	})

	RegisterListType(ListType{
		Name: "Call Lists",
		Kind: KindCallList,
		Template: Template{
			Headers: []string{"hcp_id", "hcp_name", "call_date", "sales_rep", "status"},
			SampleRows: [][]string{
				{"HCP001", "Dr. John Smith", "2024-01-15", "Sarah Johnson", "Scheduled"},
				{"HCP002", "Dr. Emily Davis", "2024-01-16", "Mike Wilson", "Completed"},
			},
			Filename: "call_lists_sample.csv",
		},
	})

	RegisterListType(ListType{
		Name: "Formulary Decision-Maker Lists",
		Kind: KindFormularyDecisionMaker,
		Template: Template{
			Headers: []string{"contact_id", "contact_name", "organization", "email", "influence_level"},
			SampleRows: [][]string{
				{"FDM001", "Linda Carter", "BlueCross Health Plan", "linda.carter@example.com", "High"},
				{"FDM002", "Raj Patel", "Metro Pharmacy Benefits", "raj.patel@example.com", "Medium"},
			},
			Filename: "formulary_decision_makers_sample.csv",
		},
	})

	RegisterListType(ListType{
		Name: "IDN/Health System Lists",
		Kind: KindIDNHealthSystem,
		Template: Template{
			Headers: []string{"system_id", "system_name", "contact_name", "contact_email", "importance"},
			SampleRows: [][]string{
				{"IDN001", "Northwell Health", "Karen Lee", "karen.lee@example.com", "High"},
				{"IDN002", "Sutter Health", "Tom Brooks", "tom.brooks@example.com", "Medium"},
			},
			Filename: "idn_health_systems_sample.csv",
		},
	})

	RegisterListType(ListType{
		Name: "Event Invitation Lists",
		Kind: KindEventInvitation,
		Template: Template{
			Headers: []string{"event_name", "event_date", "invitee_id", "invitee_name", "email", "status"},
			SampleRows: [][]string{
				{"Cardiology Summit", "2024-03-10", "HCP001", "Dr. John Smith", "john.smith@example.com", "Invited"},
				{"Cardiology Summit", "2024-03-10", "HCP002", "Dr. Emily Davis", "emily.davis@example.com", "Confirmed"},
			},
			Filename: "event_invitations_sample.csv",
		},
	})

	RegisterListType(ListType{
		Name: "Digital Engagement Lists",
		Kind: KindDigitalEngagement,
		Template: Template{
			Headers: []string{"contact_id", "contact_name", "email", "specialty", "opt_in"},
			SampleRows: [][]string{
				{"DE001", "Dr. Alan Grant", "alan.grant@example.com", "Oncology", "true"},
				{"DE002", "Dr. Ellie Sattler", "ellie.sattler@example.com", "Dermatology", "false"},
			},
			Filename: "digital_engagement_sample.csv",
		},
	})

	RegisterListType(ListType{
		Name: "High-Value Prescriber Lists",
		Kind: KindHighValuePrescriber,
		Template: Template{
			Headers: []string{"hcp_id", "hcp_name", "specialty", "territory", "total_prescriptions", "revenue", "value_tier"},
			SampleRows: [][]string{
				{"HCP010", "Dr. Priya Nair", "Endocrinology", "West", "1450", "125000.50", "Platinum"},
				{"HCP011", "Dr. Mark Chen", "Cardiology", "East", "980", "87000.00", "Gold"},
			},
			Filename: "high_value_prescribers_sample.csv",
		},
	})

	RegisterListType(ListType{
		Name: "Competitor Target Lists",
		Kind: KindCompetitorTarget,
		Template: Template{
			Headers: []string{"hcp_id", "hcp_name", "specialty", "territory", "competitor_product", "conversion_potential", "assigned_rep"},
			SampleRows: [][]string{
				{"HCP020", "Dr. Omar Haddad", "Neurology", "North", "NeuroMax", "High", "Sarah Johnson"},
				{"HCP021", "Dr. Grace Kim", "Rheumatology", "South", "ArthroEase", "Low", "Mike Wilson"},
			},
			Filename: "competitor_targets_sample.csv",
		},
	})

	RegisterDomain(Domain{
		Key:       "customer",
		Name:      "Customer / HCP",
		BackendID: 1,
		ListTypes: []string{
			"Target Lists",
			"Call Lists",
			"High-Value Prescriber Lists",
			"Competitor Target Lists",
		},
	})

	RegisterDomain(Domain{
		Key:       "engagement",
		Name:      "Marketing & Engagement",
		BackendID: 2,
		ListTypes: []string{
			"Event Invitation Lists",
			"Digital Engagement Lists",
		},
	})

	RegisterDomain(Domain{
		Key:       "account",
		Name:      "Account / Market Access",
		BackendID: 3,
		ListTypes: []string{
			"Formulary Decision-Maker Lists",
			"IDN/Health System Lists",
		},
	})
}
