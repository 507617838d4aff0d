package archive

import "testing"

func TestObjectName(t *testing.T) {
	got := ObjectName("imp-1", "/tmp/uploads/extrato.pdf")
	want := "imports/imp-1/extrato.pdf"
	if got != want {
		t.Errorf("ObjectName() = %q, want %q", got, want)
	}
}

func TestSplitURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		bucket  string
		object  string
		wantErr bool
	}{
		{name: "valid", uri: "gs://extratos/imports/a/f.pdf", bucket: "extratos", object: "imports/a/f.pdf"},
		{name: "no scheme", uri: "extratos/f.pdf", wantErr: true},
		{name: "no object", uri: "gs://extratos", wantErr: true},
		{name: "empty object", uri: "gs://extratos/", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := splitURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if bucket != tt.bucket || object != tt.object {
				t.Errorf("splitURI(%q) = %q, %q", tt.uri, bucket, object)
			}
		})
	}
}

func TestFileNameFromURI(t *testing.T) {
	if got := FileNameFromURI("gs://extratos/imports/a/extrato.pdf"); got != "extrato.pdf" {
		t.Errorf("FileNameFromURI() = %q", got)
	}
	if got := FileNameFromURI("gs://extratos"); got != "extratos" {
		t.Errorf("FileNameFromURI() bucket-only = %q", got)
	}
}
