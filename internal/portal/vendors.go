package portal

import (
	"path/filepath"
	"time"

	"github.com/porticus-lab/billrelay/internal/bill"
	"github.com/porticus-lab/billrelay/internal/extract"
)

// Settings are the per-run inputs of the built-in portals.
type Settings struct {
	Credentials Credentials
	// DownloadRoot is the parent of each portal's download directory.
	DownloadRoot string
	// ProfileDir is the persistent Chrome profile of portals that reuse
	// their session.
	ProfileDir      string
	DownloadTimeout time.Duration
}

// GasPortal is the Atmos Energy account center. The latest bill opens in a
// new window.
func GasPortal(s Settings) Portal {
	return Portal{
		Name:            "gas",
		Item:            bill.GasItem,
		LoginURL:        "https://www.atmosenergy.com/accountcenter/logon/login.html",
		Credentials:     s.Credentials,
		Username:        XPath(`/html/body/div/div/section[2]/div/div/div/div/div[2]/form/input[2]`),
		Password:        ID("password"),
		Submit:          ID("authenticate_button_Login"),
		BillingLink:     ID("viewbills"),
		LatestBill:      XPath(`/html/body/div/div/section[2]/div/div/div/div[1]/div/div[3]/div/div[2]/table/tbody/tr[1]/td[3]/span/a`),
		OpensWindow:     true,
		DownloadDir:     filepath.Join(s.DownloadRoot, "Gas_Bills"),
		Rename:          TimestampName("Gas_Bill_"),
		Engine:          extract.Gas(),
		LoginTimeout:    10 * time.Second,
		PageTimeout:     20 * time.Second,
		DownloadTimeout: s.DownloadTimeout,
	}
}

// WaterTrashPortal is the Dallas water and trash portal. It keeps a
// persistent Chrome profile so an existing session skips the login.
func WaterTrashPortal(s Settings) Portal {
	return Portal{
		Name:            "trash",
		Item:            bill.WaterTrashItem,
		LoginURL:        "https://dallasgo.dallas.gov/cp/dwu",
		Credentials:     s.Credentials,
		Username:        ID("id_loginId"),
		Password:        ID("id_password"),
		Submit:          XPath(`/html/body/div[2]/div/div[2]/div[2]/div/form/fieldset/div/div[4]/div/input`),
		JSClickFallback: true,
		ReuseSession:    true,
		LatestBill:      CSS(`a.btn-action[title*='View Bill']`),
		ScrollIntoView:  true,
		DownloadDir:     filepath.Join(s.DownloadRoot, "Water_and_Trash_Bills"),
		ProfileDir:      s.ProfileDir,
		Rename:          PrefixName("Utilities_and_Services_"),
		Engine:          extract.WaterTrash(),
		LoginTimeout:    10 * time.Second,
		PageTimeout:     10 * time.Second,
		DownloadTimeout: s.DownloadTimeout,
	}
}
