package bot

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed messages.yml
var defaultMessagesYAML []byte

// Messages holds every user- and admin-facing text the bot sends. Defaults
// are embedded; operators can override any subset through a YAML file so the
// wording (or language mix) can change without a rebuild.
type Messages struct {
	SearchResults      string `yaml:"search_results"`
	DetailCard         string `yaml:"detail_card"`
	DetailAvailable    string `yaml:"detail_available"`
	DetailNotAvailable string `yaml:"detail_not_available"`
	DetailsSentPM      string `yaml:"details_sent_pm"`
	PMRequired         string `yaml:"pm_required"`
	QuotaReached       string `yaml:"quota_reached"`
	RequestAdded       string `yaml:"request_added"`
	OldRequestRemoved  string `yaml:"old_request_removed"`
	ReplaceConflict    string `yaml:"replace_conflict"`
	RequestFulfilled   string `yaml:"request_fulfilled"`
	RequestCancelled   string `yaml:"request_cancelled"`
	CancelConfirmed    string `yaml:"cancel_confirmed"`
	NotYourRequest     string `yaml:"not_your_request"`
	AdminNewRequest    string `yaml:"admin_new_request"`
	AdminCompleted     string `yaml:"admin_completed"`
	AdminCancelled     string `yaml:"admin_cancelled"`
	AdminCancelledUser string `yaml:"admin_cancelled_by_user"`
	RequestMissing     string `yaml:"request_missing"`
	GenericError       string `yaml:"generic_error"`

	BtnDownload    string `yaml:"btn_download"`
	BtnDownloadNow string `yaml:"btn_download_now"`
	BtnRequest     string `yaml:"btn_request"`
	BtnRemove      string `yaml:"btn_remove"`
	BtnCancelOwn   string `yaml:"btn_cancel_own"`
	BtnAdminDone   string `yaml:"btn_admin_done"`
	BtnAdminCancel string `yaml:"btn_admin_cancel"`
}

// LoadMessages returns the embedded defaults, overlaid with the optional
// override file when path is non-empty. Keys absent from the override keep
// their default text.
func LoadMessages(path string) (*Messages, error) {
	var msgs Messages
	if err := yaml.Unmarshal(defaultMessagesYAML, &msgs); err != nil {
		return nil, fmt.Errorf("failed to parse embedded messages: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read messages file: %w", err)
		}
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			return nil, fmt.Errorf("failed to parse messages file %s: %w", path, err)
		}
	}

	return &msgs, nil
}
