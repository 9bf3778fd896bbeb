package ghurl

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Location
	}{
		{
			name: "repository",
			raw:  "https://github.com/acme/widget",
			want: Location{Kind: KindRepository, Owner: "acme", Repo: "widget"},
		},
		{
			name: "repository trailing slash",
			raw:  "https://github.com/acme/widget/",
			want: Location{Kind: KindRepository, Owner: "acme", Repo: "widget"},
		},
		{
			name: "repository without scheme",
			raw:  "github.com/acme/widget",
			want: Location{Kind: KindRepository, Owner: "acme", Repo: "widget"},
		},
		{
			name: "repository dot git",
			raw:  "https://github.com/acme/widget.git",
			want: Location{Kind: KindRepository, Owner: "acme", Repo: "widget"},
		},
		{
			name: "repository issue subpath",
			raw:  "https://github.com/acme/widget/issues/123",
			want: Location{Kind: KindRepository, Owner: "acme", Repo: "widget"},
		},
		{
			name: "repository pull subpath",
			raw:  "https://github.com/acme/widget/pull/9",
			want: Location{Kind: KindRepository, Owner: "acme", Repo: "widget"},
		},
		{
			name: "repository actions subpath",
			raw:  "https://github.com/acme/widget/actions/runs/42",
			want: Location{Kind: KindRepository, Owner: "acme", Repo: "widget"},
		},
		{
			name: "ssh clone",
			raw:  "git@github.com:acme/widget.git",
			want: Location{Kind: KindRepository, Owner: "acme", Repo: "widget"},
		},
		{
			name: "user project",
			raw:  "https://github.com/users/alice/projects/7",
			want: Location{Kind: KindUserProject, Owner: "alice", Number: 7},
		},
		{
			name: "user project with view",
			raw:  "https://github.com/users/alice/projects/7/views/2",
			want: Location{Kind: KindUserProject, Owner: "alice", Number: 7},
		},
		{
			name: "org project",
			raw:  "https://github.com/orgs/acme/projects/12",
			want: Location{Kind: KindOrgProject, Owner: "acme", Number: 12, Org: true},
		},
		{
			name: "bare user page",
			raw:  "https://github.com/users/alice",
			want: Location{Kind: KindUnknown},
		},
		{
			name: "project number not numeric",
			raw:  "https://github.com/users/alice/projects/current",
			want: Location{Kind: KindUnknown},
		},
		{
			name: "wrong host",
			raw:  "https://gitlab.com/acme/widget",
			want: Location{Kind: KindUnknown},
		},
		{
			name: "owner only",
			raw:  "https://github.com/acme",
			want: Location{Kind: KindUnknown},
		},
		{
			name: "empty",
			raw:  "",
			want: Location{Kind: KindUnknown},
		},
		{
			name: "garbage",
			raw:  "not a url at all ::",
			want: Location{Kind: KindUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseIssue(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantOwner  string
		wantRepo   string
		wantNumber int
		wantErr    bool
	}{
		{
			name:       "issue",
			raw:        "https://github.com/acme/widget/issues/123",
			wantOwner:  "acme",
			wantRepo:   "widget",
			wantNumber: 123,
		},
		{
			name:       "pull request",
			raw:        "https://github.com/acme/widget/pull/9",
			wantOwner:  "acme",
			wantRepo:   "widget",
			wantNumber: 9,
		},
		{
			name:    "repository without number",
			raw:     "https://github.com/acme/widget",
			wantErr: true,
		},
		{
			name:    "non numeric issue",
			raw:     "https://github.com/acme/widget/issues/new",
			wantErr: true,
		},
		{
			name:    "project url",
			raw:     "https://github.com/users/alice/projects/7",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, number, err := ParseIssue(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s/%s#%d", owner, repo, number)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseIssue failed: %v", err)
			}
			if owner != tt.wantOwner || repo != tt.wantRepo || number != tt.wantNumber {
				t.Errorf("got %s/%s#%d, want %s/%s#%d", owner, repo, number, tt.wantOwner, tt.wantRepo, tt.wantNumber)
			}
		})
	}
}
