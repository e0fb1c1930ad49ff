package dbclient

import "testing"

func TestDetect(t *testing.T) {
	t.Parallel()

	cases := []struct {
		connStr string
		want    DriverType
	}{
		{"postgres://postgres@localhost:5432/postgres", DriverPostgres},
		{"postgresql://postgres@localhost:5432/postgres?sslmode=disable", DriverPostgres},
		{"sqlite://./data", DriverSQLite},
		{"sqlite:data", DriverSQLite},
		{"file:data", DriverSQLite},
		{"./data", DriverSQLite},
		{"libsql://db.example.com", DriverLibSQL},
		{"wss://db.example.com", DriverLibSQL},
	}

	for _, tc := range cases {
		got, err := Detect(tc.connStr)
		if err != nil {
			t.Fatalf("Detect(%q) returned error: %v", tc.connStr, err)
		}
		if got != tc.want {
			t.Fatalf("Detect(%q) = %q, want %q", tc.connStr, got, tc.want)
		}
	}
}

func TestDetectUnknownScheme(t *testing.T) {
	t.Parallel()

	if _, err := Detect("mysql://root@localhost:3306/db"); err == nil {
		t.Fatal("Expected error for unsupported scheme, got nil")
	}
}

func TestDetectEmpty(t *testing.T) {
	t.Parallel()

	if _, err := Detect("   "); err == nil {
		t.Fatal("Expected error for empty connection string, got nil")
	}
}

func TestRequiresPassword(t *testing.T) {
	t.Parallel()

	if !RequiresPassword(DriverPostgres) {
		t.Fatal("Expected postgres to require a password")
	}
	if RequiresPassword(DriverSQLite) {
		t.Fatal("Expected sqlite not to require a password")
	}
	if RequiresPassword(DriverLibSQL) {
		t.Fatal("Expected libsql not to require a password")
	}
}

func TestNewUnknownScheme(t *testing.T) {
	t.Parallel()

	if _, err := New("mysql://root@localhost:3306/db", ""); err == nil {
		t.Fatal("Expected error for unsupported driver, got nil")
	}
}

func TestEndpointOf(t *testing.T) {
	t.Parallel()

	client, err := New("sqlite://"+t.TempDir(), "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer func() { _ = client.Close() }()

	endpoint := EndpointOf(client)
	if endpoint.Host != "localhost" {
		t.Fatalf("Expected localhost endpoint for sqlite, got %q", endpoint.Host)
	}
}
