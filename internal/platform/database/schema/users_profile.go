package schema

// UserProfileTable represents the 'users.profile' table
type UserProfileTable struct {
	Table         string
	UserID        string
	AvatarURL     string
	Bio           string
	FavoriteGenre string
	UpdatedAt     string
}

// UserProfile is the schema definition for users.profile
var UserProfile = UserProfileTable{
	Table:         "users.profile",
	UserID:        "userid",
	AvatarURL:     "avatarurl",
	Bio:           "bio",
	FavoriteGenre: "favoritegenre",
	UpdatedAt:     "updatedat",
}

func (t UserProfileTable) Columns() []string {
	return []string{t.UserID, t.AvatarURL, t.Bio, t.FavoriteGenre, t.UpdatedAt}
}
