package normalize

import "strings"

var appLabels = map[string]string{
	"com.google.android.apps.nbu.paisa.user": "Google Pay",
	"com.phonepe.app":                        "PhonePe",
	"net.one97.paytm":                        "Paytm",
	"in.org.npci.upiapp":                     "BHIM",
	"in.amazon.mShop.android.shopping":       "Amazon Pay",
	"com.dreamplug.androidapp":               "CRED",
	"com.mobikwik_new":                       "MobiKwik",
	"com.freecharge.android":                 "Freecharge",
	"com.whatsapp":                           "WhatsApp",
	"com.sbi.lotusintouch":                   "SBI",
	"com.snapwork.hdfc":                      "HDFC Bank",
	"com.csam.icici.bank.imobile":            "ICICI Bank",
	"com.axis.mobile":                        "Axis Bank",
	"com.msf.kbank.mobile":                   "Kotak Bank",
}

var financialAppMarkers = []string{
	"paytm", "phonepe", "googlepay", "gpay", "paisa", "tez", "whatsapp", "bank",
	"upi", "amazonpay", "bhim", "cred", "mobikwik", "freecharge", "sbi", "hdfc",
	"icici", "axis", "kotak",
}

// AppLabel returns a display label for an android package name. Unknown
// packages are returned unchanged.
func AppLabel(pkg string) string {
	if label, ok := appLabels[pkg]; ok {
		return label
	}
	return pkg
}

// IsFinancialApp reports whether pkg looks like a payment or banking app.
func IsFinancialApp(pkg string) bool {
	if pkg == "" {
		return false
	}
	if _, ok := appLabels[pkg]; ok {
		return true
	}
	p := strings.ToLower(pkg)
	for _, m := range financialAppMarkers {
		if strings.Contains(p, m) {
			return true
		}
	}
	return false
}
