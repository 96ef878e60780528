package merchants

import "github.com/money-manager/txnparse/internal/model"

// OtherCategory is suggested when nothing matches.
const OtherCategory = "Other"

const (
	catFood          = "Food & Dining"
	catTransport     = "Transportation"
	catShopping      = "Shopping"
	catEntertainment = "Entertainment"
	catBills         = "Bills & Utilities"
	catGroceries     = "Groceries"
	catHealth        = "Health"
	catEducation     = "Education"
)

// DefaultCatalog returns the merchants written by txnparse init.
func DefaultCatalog() []model.Merchant {
	return []model.Merchant{
		{Name: "Swiggy", Category: catFood, Aliases: []string{"swiggy instamart"}},
		{Name: "Zomato", Category: catFood},
		{Name: "Uber Eats", Category: catFood, Aliases: []string{"ubereats"}},
		{Name: "Domino's", Category: catFood, Aliases: []string{"dominos", "dominos pizza"}},
		{Name: "McDonald's", Category: catFood, Aliases: []string{"mcdonalds", "mcdonald"}},
		{Name: "KFC", Category: catFood},
		{Name: "Uber", Category: catTransport, Aliases: []string{"uber india"}},
		{Name: "Ola", Category: catTransport, Aliases: []string{"ola cabs", "ani technologies"}},
		{Name: "Rapido", Category: catTransport},
		{Name: "Amazon", Category: catShopping, Aliases: []string{"amazon pay", "amazon in"}},
		{Name: "Flipkart", Category: catShopping},
		{Name: "Myntra", Category: catShopping},
		{Name: "Ajio", Category: catShopping},
		{Name: "Netflix", Category: catEntertainment},
		{Name: "Amazon Prime", Category: catEntertainment, Aliases: []string{"prime video"}},
		{Name: "Hotstar", Category: catEntertainment, Aliases: []string{"disney hotstar"}},
		{Name: "Spotify", Category: catEntertainment},
		{Name: "PVR", Category: catEntertainment, Aliases: []string{"pvr cinemas"}},
		{Name: "INOX", Category: catEntertainment},
		{Name: "Airtel", Category: catBills, Aliases: []string{"bharti airtel"}},
		{Name: "Jio", Category: catBills, Aliases: []string{"reliance jio"}},
		{Name: "Vodafone", Category: catBills, Aliases: []string{"vodafone idea", "vi"}},
		{Name: "DMart", Category: catGroceries, Aliases: []string{"d mart", "avenue supermarts"}},
		{Name: "Reliance Fresh", Category: catGroceries},
		{Name: "Big Bazaar", Category: catGroceries},
		{Name: "BigBasket", Category: catGroceries, Aliases: []string{"big basket"}},
		{Name: "Blinkit", Category: catGroceries},
		{Name: "Zepto", Category: catGroceries},
		{Name: "Apollo Pharmacy", Category: catHealth, Aliases: []string{"apollo"}},
		{Name: "Udemy", Category: catEducation},
		{Name: "Coursera", Category: catEducation},
	}
}

// categoryKeywords are generic words that suggest a category when the
// merchant itself is not in the catalog. Order breaks ties.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{catFood, []string{"food", "restaurant", "cafe", "pizza", "burger"}},
	{catTransport, []string{"metro", "bus", "taxi", "fuel", "petrol", "diesel", "parking"}},
	{catShopping, []string{"shopping", "mall", "retail", "store"}},
	{catEntertainment, []string{"movie", "cinema", "gaming"}},
	{catBills, []string{"electricity", "water", "gas", "mobile", "internet", "broadband", "bill", "recharge"}},
	{catGroceries, []string{"grocery", "supermarket", "milk", "vegetables"}},
	{catHealth, []string{"hospital", "medical", "pharmacy", "medicine", "doctor", "clinic", "health"}},
	{catEducation, []string{"course", "book", "education", "school", "college", "university", "tuition"}},
}
