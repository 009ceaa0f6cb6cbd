package forms

import (
	"strings"

	"realestate-hub/internal/models"

	"gorm.io/datatypes"
)

// ContactForm sends a message about a property; it becomes an Inquiry
type ContactForm struct {
	Name    string `json:"name" validate:"required,notblank,min=2,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,notblank,max=50"`
	Message string `json:"message" validate:"required,notblank,max=5000"`
}

func (f ContactForm) ToModel(propertyID string) *models.Inquiry {
	return &models.Inquiry{
		PropertyID: propertyID,
		Name:       strings.TrimSpace(f.Name),
		Email:      strings.TrimSpace(f.Email),
		Phone:      strings.TrimSpace(f.Phone),
		Message:    strings.TrimSpace(f.Message),
		Status:     models.InquiryStatusNew,
	}
}

// VisitForm schedules a showing within visiting hours on a day that has not passed
type VisitForm struct {
	Name          string `json:"name" validate:"required,notblank,min=2,max=255"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,notblank,max=50"`
	PreferredDate string `json:"preferred_date" validate:"required,datetime=2006-01-02,notpast"`
	PreferredTime string `json:"preferred_time" validate:"required,datetime=15:04,visit_time"`
	Notes         string `json:"notes" validate:"max=2000"`
}

func (f VisitForm) ToModel(propertyID string) *models.Visit {
	return &models.Visit{
		PropertyID: propertyID,
		Name:       strings.TrimSpace(f.Name),
		Email:      strings.TrimSpace(f.Email),
		Phone:      strings.TrimSpace(f.Phone),
		VisitDate:  f.PreferredDate,
		VisitTime:  f.PreferredTime,
		Notes:      strings.TrimSpace(f.Notes),
		Status:     models.VisitStatusScheduled,
	}
}

// LeadForm registers interest in a property
type LeadForm struct {
	Name    string `json:"name" validate:"required,notblank,min=2,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=50"`
	Message string `json:"message" validate:"max=5000"`
	Source  string `json:"source" validate:"omitempty,oneof=website phone email referral other"`
}

func (f LeadForm) ToModel(propertyID string) *models.Lead {
	source := models.LeadSource(f.Source)
	if source == "" {
		source = models.LeadSourceWebsite
	}
	return &models.Lead{
		PropertyID: propertyID,
		Name:       strings.TrimSpace(f.Name),
		Email:      strings.TrimSpace(f.Email),
		Phone:      strings.TrimSpace(f.Phone),
		Message:    strings.TrimSpace(f.Message),
		Source:     source,
		Status:     models.LeadStatusNew,
	}
}

// PropertyForm creates a listing
type PropertyForm struct {
	Title       string   `json:"title" validate:"required,notblank,max=255"`
	Description string   `json:"description" validate:"required,notblank"`
	Type        string   `json:"type" validate:"required,oneof=house apartment land commercial office"`
	Status      string   `json:"status" validate:"required,oneof=for_sale for_rent sold rented"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Currency    string   `json:"currency" validate:"omitempty,len=3"`
	Bedrooms    *int     `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms   *float64 `json:"bathrooms" validate:"omitempty,gte=0"`
	AreaSize    *float64 `json:"area_size" validate:"required,gt=0"`
	AreaUnit    string   `json:"area_unit" validate:"max=10"`
	Address     string   `json:"address" validate:"required,notblank,max=255"`
	City        string   `json:"city" validate:"required,notblank,max=100"`
	State       string   `json:"state" validate:"required,notblank,max=100"`
	PostalCode  string   `json:"postal_code" validate:"required,notblank,max=20"`
	Country     string   `json:"country" validate:"max=100"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
	Features    []string `json:"features" validate:"omitempty,dive,required,max=100"`
	Images      []string `json:"images" validate:"omitempty,dive,required"`
	// AgentID lets an admin list on behalf of an agent; ignored for agents.
	AgentID string `json:"agent_id"`
}

// PropertyEditForm is a PropertyForm plus the version the editor loaded
type PropertyEditForm struct {
	PropertyForm
	Version int `json:"version" validate:"required,gte=1"`
}

func (f PropertyForm) ToModel(agentID string) *models.Property {
	p := &models.Property{
		AgentID: agentID,
		Version: 1,
	}
	f.apply(p)
	return p
}

func (f PropertyForm) apply(p *models.Property) {
	p.Title = strings.TrimSpace(f.Title)
	p.Description = strings.TrimSpace(f.Description)
	p.Type = models.PropertyType(f.Type)
	p.Status = models.PropertyStatus(f.Status)
	if f.Price != nil {
		p.Price = *f.Price
	}
	p.Currency = defaultString(strings.ToUpper(f.Currency), "MXN")
	p.Bedrooms = f.Bedrooms
	p.Bathrooms = f.Bathrooms
	p.AreaSize = f.AreaSize
	p.AreaUnit = defaultString(f.AreaUnit, "m²")
	p.Address = strings.TrimSpace(f.Address)
	p.City = strings.TrimSpace(f.City)
	p.State = strings.TrimSpace(f.State)
	p.PostalCode = strings.TrimSpace(f.PostalCode)
	p.Country = defaultString(strings.TrimSpace(f.Country), "Mexico")
	p.Latitude = f.Latitude
	p.Longitude = f.Longitude
	p.Features = datatypes.JSONSlice[string](nonNil(f.Features))
	p.Images = datatypes.JSONSlice[string](nonNil(f.Images))
}

// Fields returns the columns an edit writes
func (f PropertyForm) Fields() map[string]interface{} {
	var p models.Property
	f.apply(&p)
	return map[string]interface{}{
		"title":       p.Title,
		"description": p.Description,
		"type":        p.Type,
		"status":      p.Status,
		"price":       p.Price,
		"currency":    p.Currency,
		"bedrooms":    p.Bedrooms,
		"bathrooms":   p.Bathrooms,
		"area_size":   p.AreaSize,
		"area_unit":   p.AreaUnit,
		"address":     p.Address,
		"city":        p.City,
		"state":       p.State,
		"postal_code": p.PostalCode,
		"country":     p.Country,
		"latitude":    p.Latitude,
		"longitude":   p.Longitude,
		"features":    p.Features,
		"images":      p.Images,
	}
}

// PropertyStatusForm changes only the market status of a listing
type PropertyStatusForm struct {
	Status string `json:"status" validate:"required,oneof=for_sale for_rent sold rented"`
}

// RegistrationForm is the public sign-up form
type RegistrationForm struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	FullName        string `json:"full_name" validate:"required,notblank,min=2,max=255"`
	Phone           string `json:"phone" validate:"max=50"`
	Role            string `json:"role" validate:"required,oneof=client agent"`
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserForm creates a user from the admin dashboard
type UserForm struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FullName  string `json:"full_name" validate:"required,notblank,max=255"`
	Phone     string `json:"phone" validate:"max=50"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
	Role      string `json:"role" validate:"required,oneof=admin agent client"`
	Status    string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UserUpdateForm edits a user; absent fields are left unchanged
type UserUpdateForm struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FullName  *string `json:"full_name" validate:"omitempty,notblank,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,max=50"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin agent client"`
	Status    *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (f UserUpdateForm) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if f.Email != nil {
		fields["email"] = *f.Email
	}
	if f.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*f.FullName)
	}
	if f.Phone != nil {
		fields["phone"] = strings.TrimSpace(*f.Phone)
	}
	if f.AvatarURL != nil {
		fields["avatar_url"] = *f.AvatarURL
	}
	if f.Role != nil {
		fields["role"] = models.UserRole(*f.Role)
	}
	if f.Status != nil {
		fields["status"] = models.UserStatus(*f.Status)
	}
	return fields
}

// AgentProfileForm edits the public agent profile
type AgentProfileForm struct {
	Name      string `json:"name" validate:"required,notblank,min=2,max=255"`
	Phone     string `json:"phone" validate:"max=50"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
	Bio       string `json:"bio" validate:"max=2000"`
}

func (f AgentProfileForm) Fields() map[string]interface{} {
	return map[string]interface{}{
		"name":       strings.TrimSpace(f.Name),
		"phone":      strings.TrimSpace(f.Phone),
		"avatar_url": f.AvatarURL,
		"bio":        strings.TrimSpace(f.Bio),
	}
}

type LeadStatusForm struct {
	Status string  `json:"status" validate:"required,oneof=new contacted qualified converted lost"`
	Notes  *string `json:"notes" validate:"omitempty,max=5000"`
}

type InquiryStatusForm struct {
	Status string  `json:"status" validate:"required,oneof=new contacted scheduled completed cancelled"`
	Notes  *string `json:"notes" validate:"omitempty,max=5000"`
}

type VisitStatusForm struct {
	Status string  `json:"status" validate:"required,oneof=scheduled completed cancelled no_show"`
	Notes  *string `json:"notes" validate:"omitempty,max=5000"`
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
