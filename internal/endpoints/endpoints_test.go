package endpoints

import "testing"

func TestNew_RegionalURLs(t *testing.T) {
	r := New("eu-central-1")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"API", r.API(), "https://eu-central-1.console.aws.amazon.com/singlesignon/api"},
		{"Peregrine", r.Peregrine(), "https://eu-central-1.console.aws.amazon.com/singlesignon/api/peregrine"},
		{"UserPool", r.UserPool(), "https://eu-central-1.console.aws.amazon.com/singlesignon/api/userpool"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestNew_ListURLsStayOnFixedHost(t *testing.T) {
	// The list endpoints do not follow the session region.
	r := New("us-east-2")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"Organizations", r.Organizations(), "https://eu-west-1.console.aws.amazon.com/singlesignon/api/organizations"},
		{"IdentityStore", r.IdentityStore(), "https://eu-west-1.console.aws.amazon.com/singlesignon/api/identitystore"},
		{"ListUserPool", r.ListUserPool(), "https://eu-west-1.console.aws.amazon.com/singlesignon/api/userpool"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestNewWithBases_Override(t *testing.T) {
	r := NewWithBases("http://127.0.0.1:9999/api", "http://127.0.0.1:9999/list")

	if got := r.Peregrine(); got != "http://127.0.0.1:9999/api/peregrine" {
		t.Errorf("Peregrine = %q", got)
	}
	if got := r.Organizations(); got != "http://127.0.0.1:9999/list/organizations" {
		t.Errorf("Organizations = %q", got)
	}
}
