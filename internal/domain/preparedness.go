package domain

// PreparednessGuide is the static disaster-preparedness reference shipped
// with the daemon: guidance sections, emergency contact numbers, and
// further-reading links. The guide is fixed reference material, not live
// data, so it carries no timestamps or ids.
type PreparednessGuide struct {
	Overview  string         `json:"overview"`
	Sections  []GuideSection `json:"sections"`
	Contacts  []ContactGroup `json:"contacts"`
	Resources []ResourceLink `json:"resources"`
}

// GuideSection is one titled block of guidance points.
type GuideSection struct {
	Title  string   `json:"title"`
	Points []string `json:"points"`
}

// ContactGroup is a titled set of emergency phone numbers.
type ContactGroup struct {
	Title   string   `json:"title"`
	Numbers []string `json:"numbers"`
}

// ResourceLink points at external reference material.
type ResourceLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// StaticPreparednessGuide returns the bundled guide content.
func StaticPreparednessGuide() PreparednessGuide {
	return PreparednessGuide{
		Overview: "Landslides are the downward movement of rock, soil, and debris triggered by factors like heavy rainfall, earthquakes, volcanic activity, or human activities.",
		Sections: []GuideSection{
			{
				Title: "Signs of an impending landslide",
				Points: []string{
					"Cracks in soil, walls, or roads",
					"Tilting trees, fences, or utility poles",
					"Sudden changes in water flow",
					"Unusual sounds like rumbling or trees cracking",
				},
			},
			{
				Title: "Before a landslide",
				Points: []string{
					"Avoid high-risk zones: steep slopes, mountain edges, river valleys",
					"Plant deep-rooted vegetation to stabilize soil",
					"Install drainage systems to prevent water accumulation",
					"Consult experts to assess slope stability before building in landslide-prone areas",
				},
			},
			{
				Title: "During a landslide: indoors",
				Points: []string{
					"Evacuate immediately if authorities issue warnings or you hear unusual sounds",
					"Avoid rooms on the downhill side of the house; shelter under sturdy furniture if trapped",
				},
			},
			{
				Title: "During a landslide: outdoors",
				Points: []string{
					"Run to the nearest high ground away from the landslide path",
					"Avoid river valleys, steep slopes, and debris flow channels",
					"If escape is not possible, curl into a tight ball to protect your head",
				},
			},
			{
				Title: "During a landslide: driving",
				Points: []string{
					"Watch for collapsed pavement, mud, or falling rocks",
					"Abandon your car if debris approaches; move on foot to higher ground",
				},
			},
			{
				Title: "Critical don'ts",
				Points: []string{
					"Never try to outrun a landslide; debris flows can exceed 35 mph",
					"Do not enter landslide areas to rescue others; call emergency services instead",
					"Avoid downed power lines or gas leaks",
				},
			},
		},
		Contacts: []ContactGroup{
			{Title: "National emergency helpline", Numbers: []string{"112"}},
			{Title: "Police", Numbers: []string{
				"Trivandrum: 0471-2331843", "Kollam: 0474-2746000",
				"Pathanamthitta: 0468-2222226", "Alappuzha: 0477-2251166",
				"Kottayam: 0481-5550400", "Idukki: 04862-221100",
				"Ernakulam: 0484-2359200", "Thrissur: 0487-2424193",
				"Palakkad: 0491-2522340", "Malappuram: 0483-2734966",
				"Kozhikode: 0495-2721831", "Wayanad: 04936-205808",
				"Kannur: 0497-2763337", "Kasargod: 04994-222960",
			}},
			{Title: "Fire and rescue", Numbers: []string{"101"}},
			{Title: "State disaster management helpline", Numbers: []string{"1070"}},
			{Title: "Medical emergency", Numbers: []string{"108"}},
		},
		Resources: []ResourceLink{
			{
				Title: "Tips for staying safe during a landslide",
				URL:   "https://www.chubb.com/us-en/individuals-families/resources/tips-for-staying-safe-during-a-landslide.html",
			},
			{
				Title: "Landslide preparedness: survival actions",
				URL:   "https://www.washington.edu/news/2020/10/22/simple-actions-can-help-people-survive-landslides-uw-analysis-shows/",
			},
		},
	}
}
