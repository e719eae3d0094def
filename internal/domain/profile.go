package domain

// UserProfile is the account record stored at users/{uid}. Saves overwrite
// the full record; there is no partial-field merge.
type UserProfile struct {
	UID      string `json:"uid"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
	Contact  string `json:"contact"`
}

// DecodeUserProfile converts a raw users/{uid} value into a UserProfile.
// Total: a non-object raw value yields the zero profile.
func DecodeUserProfile(raw any) UserProfile {
	fields, ok := raw.(map[string]any)
	if !ok {
		return UserProfile{}
	}
	return UserProfile{
		UID:      decodeString(fields["uid"]),
		Name:     decodeString(fields["name"]),
		Email:    decodeString(fields["email"]),
		Location: decodeString(fields["location"]),
		Contact:  decodeString(fields["contact"]),
	}
}
