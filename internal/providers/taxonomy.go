package providers

// Category taxonomy over the Google Places type system. Internal categories
// map to a Table A type plus an optional keyword refinement; recognition of
// returned places walks the same tables in reverse.
// Reference: https://developers.google.com/maps/documentation/places/web-service/place-types

type googleMapping struct {
	Type    string
	Keyword string
}

var categoryToGoogle = map[string]googleMapping{
	// Food & drink
	"restaurant":     {Type: "restaurant"},
	"fine_dining":    {Type: "fine_dining_restaurant"},
	"fast_food":      {Type: "fast_food_restaurant"},
	"casual_dining":  {Type: "restaurant", Keyword: "casual"},

	"mexican_restaurant":        {Type: "mexican_restaurant"},
	"italian_restaurant":        {Type: "italian_restaurant"},
	"chinese_restaurant":        {Type: "chinese_restaurant"},
	"japanese_restaurant":       {Type: "japanese_restaurant"},
	"indian_restaurant":         {Type: "indian_restaurant"},
	"french_restaurant":         {Type: "french_restaurant"},
	"thai_restaurant":           {Type: "thai_restaurant"},
	"spanish_restaurant":        {Type: "spanish_restaurant"},
	"greek_restaurant":          {Type: "greek_restaurant"},
	"korean_restaurant":         {Type: "korean_restaurant"},
	"vietnamese_restaurant":     {Type: "vietnamese_restaurant"},
	"middle_eastern_restaurant": {Type: "middle_eastern_restaurant"},
	"lebanese_restaurant":       {Type: "lebanese_restaurant"},
	"turkish_restaurant":        {Type: "turkish_restaurant"},
	"brazilian_restaurant":      {Type: "brazilian_restaurant"},
	"indonesian_restaurant":     {Type: "indonesian_restaurant"},
	"mediterranean_restaurant":  {Type: "mediterranean_restaurant"},
	"african_restaurant":        {Type: "african_restaurant"},
	"asian_restaurant":          {Type: "asian_restaurant"},

	"barbecue_restaurant":  {Type: "barbecue_restaurant"},
	"seafood_restaurant":   {Type: "seafood_restaurant"},
	"steak_house":          {Type: "steak_house"},
	"sushi_restaurant":     {Type: "sushi_restaurant"},
	"ramen_restaurant":     {Type: "ramen_restaurant"},
	"pizza_restaurant":     {Type: "pizza_restaurant"},
	"pizza":                {Type: "pizza_restaurant"},
	"hamburger_restaurant": {Type: "hamburger_restaurant"},
	"sandwich_shop":        {Type: "sandwich_shop"},
	"breakfast_restaurant": {Type: "breakfast_restaurant"},
	"brunch_restaurant":    {Type: "brunch_restaurant"},
	"vegan_restaurant":     {Type: "vegan_restaurant"},
	"vegetarian_restaurant": {Type: "vegetarian_restaurant"},
	"buffet_restaurant":    {Type: "buffet_restaurant"},
	"dessert_restaurant":   {Type: "dessert_restaurant"},

	"diner":      {Type: "diner"},
	"food_court": {Type: "food_court"},
	"cafeteria":  {Type: "cafeteria"},

	"local_restaurant":    {Type: "restaurant", Keyword: "local"},
	"traditional_food":    {Type: "restaurant", Keyword: "traditional"},
	"ethnic_restaurant":   {Type: "restaurant", Keyword: "ethnic"},
	"romantic_restaurant": {Type: "restaurant", Keyword: "romantic"},
	"upscale_restaurant":  {Type: "fine_dining_restaurant"},

	// Bars & nightlife
	"bar":          {Type: "bar"},
	"wine_bar":     {Type: "wine_bar"},
	"pub":          {Type: "pub"},
	"night_club":   {Type: "night_club"},
	"nightclub":    {Type: "night_club"},
	"dance_club":   {Type: "night_club", Keyword: "dance"},
	"cocktail_bar": {Type: "bar", Keyword: "cocktail"},
	"hotel_bar":    {Type: "bar", Keyword: "hotel"},
	"rooftop_bar":  {Type: "bar", Keyword: "rooftop"},
	"lounge":       {Type: "bar", Keyword: "lounge"},
	"speakeasy":    {Type: "bar", Keyword: "speakeasy"},
	"jazz_bar":     {Type: "bar", Keyword: "jazz"},
	"cultural_bar": {Type: "bar", Keyword: "cultural"},
	"karaoke":      {Type: "karaoke"},
	"comedy_club":  {Type: "comedy_club"},

	// Cafes & coffee
	"cafe":           {Type: "cafe"},
	"coffee_shop":    {Type: "coffee_shop"},
	"tea_house":      {Type: "tea_house"},
	"bakery":         {Type: "bakery"},
	"patisserie":     {Type: "bakery", Keyword: "patisserie"},
	"ice_cream":      {Type: "ice_cream_shop"},
	"ice_cream_shop": {Type: "ice_cream_shop"},
	"dessert":        {Type: "dessert_shop"},
	"dessert_shop":   {Type: "dessert_shop"},
	"donut_shop":     {Type: "donut_shop"},
	"bagel_shop":     {Type: "bagel_shop"},
	"chocolate_shop": {Type: "chocolate_shop"},
	"candy_store":    {Type: "candy_store"},
	"juice_shop":     {Type: "juice_shop"},

	"specialty_coffee":  {Type: "coffee_shop", Keyword: "specialty"},
	"roastery":          {Type: "coffee_shop", Keyword: "roastery"},
	"third_wave_coffee": {Type: "coffee_shop", Keyword: "third wave"},

	// Takeaway & delivery
	"meal_takeaway": {Type: "meal_takeaway"},
	"meal_delivery": {Type: "meal_delivery"},
	"late_food":     {Type: "meal_takeaway", Keyword: "late night"},
	"street_food":   {Type: "meal_takeaway", Keyword: "street food"},
	"food_truck":    {Type: "meal_takeaway", Keyword: "food truck"},
	"market_stall":  {Type: "market", Keyword: "food stall"},
	"kebab":         {Type: "meal_takeaway", Keyword: "kebab"},

	// Entertainment & recreation
	"tourist_attraction": {Type: "tourist_attraction"},
	"amusement_park":     {Type: "amusement_park"},
	"amusement_center":   {Type: "amusement_center"},
	"water_park":         {Type: "water_park"},
	"theme_park":         {Type: "amusement_park", Keyword: "theme"},
	"aquarium":           {Type: "aquarium"},
	"zoo":                {Type: "zoo"},
	"wildlife_park":      {Type: "wildlife_park"},
	"wildlife_refuge":    {Type: "wildlife_refuge"},

	// Landmarks & views
	"landmark":            {Type: "tourist_attraction", Keyword: "landmark"},
	"famous_site":         {Type: "tourist_attraction", Keyword: "famous"},
	"historical_landmark": {Type: "historical_landmark"},
	"monument":            {Type: "monument"},
	"observation_deck":    {Type: "observation_deck"},
	"viewpoint":           {Type: "observation_deck", Keyword: "viewpoint"},
	"scenic_spot":         {Type: "observation_deck", Keyword: "scenic"},
	"photo_spot":          {Type: "tourist_attraction", Keyword: "photo"},
	"street_art":          {Type: "tourist_attraction", Keyword: "street art"},
	"rooftop":             {Type: "observation_deck", Keyword: "rooftop"},

	// Historical & cultural
	"historic_site":     {Type: "historical_landmark"},
	"historic_district": {Type: "historical_landmark", Keyword: "old town"},
	"historical_place":  {Type: "historical_place"},
	"cultural_landmark": {Type: "cultural_landmark"},
	"castle":            {Type: "historical_landmark", Keyword: "castle"},
	"sculpture":         {Type: "sculpture"},

	// Parks & gardens
	"park":             {Type: "park"},
	"national_park":    {Type: "national_park"},
	"state_park":       {Type: "state_park"},
	"dog_park":         {Type: "dog_park"},
	"botanical_garden": {Type: "botanical_garden"},
	"garden":           {Type: "garden"},
	"plaza":            {Type: "plaza"},
	"picnic_ground":    {Type: "picnic_ground"},
	"barbecue_area":    {Type: "barbecue_area"},

	// Outdoor
	"hiking_area":             {Type: "hiking_area"},
	"trail":                   {Type: "hiking_area", Keyword: "trail"},
	"cycling_park":            {Type: "cycling_park"},
	"skateboard_park":         {Type: "skateboard_park"},
	"adventure_sports_center": {Type: "adventure_sports_center"},
	"off_roading_area":        {Type: "off_roading_area"},
	"beach":                   {Type: "beach"},
	"waterfront":              {Type: "tourist_attraction", Keyword: "waterfront"},
	"marina":                  {Type: "marina"},

	// Entertainment venues
	"movie_theater":     {Type: "movie_theater"},
	"cinema":            {Type: "movie_theater"},
	"bowling_alley":     {Type: "bowling_alley"},
	"casino":            {Type: "casino"},
	"event_venue":       {Type: "event_venue"},
	"convention_center": {Type: "convention_center"},
	"wedding_venue":     {Type: "wedding_venue"},
	"banquet_hall":      {Type: "banquet_hall"},
	"video_arcade":      {Type: "video_arcade"},
	"internet_cafe":     {Type: "internet_cafe"},
	"ferris_wheel":      {Type: "ferris_wheel"},
	"roller_coaster":    {Type: "roller_coaster"},

	// Culture
	"museum":                  {Type: "museum"},
	"art_gallery":             {Type: "art_gallery"},
	"art_studio":              {Type: "art_studio"},
	"performing_arts_theater": {Type: "performing_arts_theater"},
	"theater":                 {Type: "performing_arts_theater"},
	"opera_house":             {Type: "opera_house"},
	"concert_hall":            {Type: "concert_hall"},
	"philharmonic_hall":       {Type: "philharmonic_hall"},
	"auditorium":              {Type: "auditorium"},
	"amphitheatre":            {Type: "amphitheatre"},
	"planetarium":             {Type: "planetarium"},
	"cultural_center":         {Type: "cultural_center"},
	"community_center":        {Type: "community_center"},
	"visitor_center":          {Type: "visitor_center"},

	// Shopping
	"shopping_mall":     {Type: "shopping_mall"},
	"shopping_area":     {Type: "store", Keyword: "shopping street"},
	"market":            {Type: "market"},
	"supermarket":       {Type: "supermarket"},
	"grocery_store":     {Type: "grocery_store"},
	"convenience_store": {Type: "convenience_store"},
	"department_store":  {Type: "department_store"},
	"store":             {Type: "store"},

	"book_store":           {Type: "book_store"},
	"clothing_store":       {Type: "clothing_store"},
	"shoe_store":           {Type: "shoe_store"},
	"jewelry_store":        {Type: "jewelry_store"},
	"gift_shop":            {Type: "gift_shop"},
	"electronics_store":    {Type: "electronics_store"},
	"furniture_store":      {Type: "furniture_store"},
	"home_goods_store":     {Type: "home_goods_store"},
	"sporting_goods_store": {Type: "sporting_goods_store"},

	"boutique":      {Type: "clothing_store", Keyword: "boutique"},
	"vintage":       {Type: "clothing_store", Keyword: "vintage"},
	"concept_store": {Type: "store", Keyword: "concept"},

	// Sports & fitness
	"gym":              {Type: "gym"},
	"fitness_center":   {Type: "fitness_center"},
	"yoga_studio":      {Type: "yoga_studio"},
	"sports_club":      {Type: "sports_club"},
	"sports_complex":   {Type: "sports_complex"},
	"stadium":          {Type: "stadium"},
	"arena":            {Type: "arena"},
	"golf_course":      {Type: "golf_course"},
	"swimming_pool":    {Type: "swimming_pool"},
	"ice_skating_rink": {Type: "ice_skating_rink"},
	"ski_resort":       {Type: "ski_resort"},
	"playground":       {Type: "playground"},
	"athletic_field":   {Type: "athletic_field"},

	// Health & wellness
	"spa":             {Type: "spa"},
	"sauna":           {Type: "sauna"},
	"massage":         {Type: "massage"},
	"wellness_center": {Type: "wellness_center"},
	"beauty_salon":    {Type: "beauty_salon"},
	"hair_salon":      {Type: "hair_salon"},
	"nail_salon":      {Type: "nail_salon"},
	"barber_shop":     {Type: "barber_shop"},

	// Lodging
	"hotel":             {Type: "hotel"},
	"lodging":           {Type: "lodging"},
	"resort_hotel":      {Type: "resort_hotel"},
	"motel":             {Type: "motel"},
	"hostel":            {Type: "hostel"},
	"bed_and_breakfast": {Type: "bed_and_breakfast"},
	"guest_house":       {Type: "guest_house"},
	"campground":        {Type: "campground"},

	// Services
	"travel_agency":              {Type: "travel_agency"},
	"tour_agency":                {Type: "tour_agency"},
	"tourist_information_center": {Type: "tourist_information_center"},

	// Places of worship
	"church":       {Type: "church"},
	"mosque":       {Type: "mosque"},
	"synagogue":    {Type: "synagogue"},
	"hindu_temple": {Type: "hindu_temple"},

	// Transportation
	"airport":         {Type: "airport"},
	"train_station":   {Type: "train_station"},
	"bus_station":     {Type: "bus_station"},
	"subway_station":  {Type: "subway_station"},
	"transit_station": {Type: "transit_station"},
	"parking":         {Type: "parking"},
	"gas_station":     {Type: "gas_station"},
}

// googleTypesTableA lists the filterable types a place record can carry.
var googleTypesTableA = map[string]struct{}{}

// googleTypesTableB lists response-only generics that cannot be used for
// filtering and only count when explicitly requested.
var googleTypesTableB = map[string]struct{}{}

func init() {
	tableA := []string{
		"restaurant", "fine_dining_restaurant", "fast_food_restaurant",
		"mexican_restaurant", "italian_restaurant", "chinese_restaurant", "japanese_restaurant",
		"indian_restaurant", "french_restaurant", "thai_restaurant", "spanish_restaurant",
		"greek_restaurant", "korean_restaurant", "vietnamese_restaurant", "middle_eastern_restaurant",
		"lebanese_restaurant", "turkish_restaurant", "brazilian_restaurant", "indonesian_restaurant",
		"mediterranean_restaurant", "african_restaurant", "asian_restaurant", "american_restaurant",
		"barbecue_restaurant", "seafood_restaurant", "steak_house", "sushi_restaurant",
		"ramen_restaurant", "pizza_restaurant", "hamburger_restaurant", "sandwich_shop",
		"breakfast_restaurant", "brunch_restaurant", "vegan_restaurant", "vegetarian_restaurant",
		"buffet_restaurant", "dessert_restaurant", "diner", "food_court", "cafeteria",
		"bar", "wine_bar", "pub", "night_club", "karaoke", "comedy_club",
		"cafe", "coffee_shop", "tea_house", "bakery", "ice_cream_shop", "dessert_shop",
		"donut_shop", "bagel_shop", "chocolate_shop", "candy_store", "juice_shop",
		"meal_takeaway", "meal_delivery",
		"tourist_attraction", "amusement_park", "amusement_center", "water_park",
		"aquarium", "zoo", "wildlife_park", "wildlife_refuge",
		"historical_landmark", "monument", "observation_deck", "historical_place", "cultural_landmark", "sculpture",
		"park", "national_park", "state_park", "dog_park", "botanical_garden", "garden", "plaza",
		"picnic_ground", "barbecue_area", "hiking_area", "cycling_park", "skateboard_park",
		"adventure_sports_center", "off_roading_area", "beach", "marina",
		"movie_theater", "bowling_alley", "casino", "event_venue", "convention_center",
		"wedding_venue", "banquet_hall", "video_arcade", "internet_cafe",
		"ferris_wheel", "roller_coaster",
		"museum", "art_gallery", "art_studio", "performing_arts_theater", "opera_house",
		"concert_hall", "philharmonic_hall", "auditorium", "amphitheatre", "planetarium",
		"cultural_center", "community_center", "visitor_center",
		"shopping_mall", "market", "supermarket", "grocery_store", "convenience_store",
		"department_store", "store", "book_store", "clothing_store", "shoe_store",
		"jewelry_store", "gift_shop", "electronics_store", "furniture_store",
		"home_goods_store", "sporting_goods_store",
		"gym", "fitness_center", "yoga_studio", "sports_club", "sports_complex",
		"stadium", "arena", "golf_course", "swimming_pool", "ice_skating_rink",
		"ski_resort", "playground", "athletic_field",
		"spa", "sauna", "massage", "wellness_center", "beauty_salon", "hair_salon",
		"nail_salon", "barber_shop",
		"hotel", "lodging", "resort_hotel", "motel", "hostel", "bed_and_breakfast",
		"guest_house", "campground",
		"travel_agency", "tour_agency", "tourist_information_center",
		"church", "mosque", "synagogue", "hindu_temple",
		"airport", "train_station", "bus_station", "subway_station", "transit_station",
		"parking", "gas_station",
	}
	for _, t := range tableA {
		googleTypesTableA[t] = struct{}{}
	}

	tableB := []string{
		"establishment", "point_of_interest", "food", "place_of_worship",
		"landmark", "natural_feature", "neighborhood", "political",
		"locality", "sublocality", "route", "street_address", "premise",
		"administrative_area_level_1", "administrative_area_level_2",
		"administrative_area_level_3", "administrative_area_level_4",
		"administrative_area_level_5", "country", "postal_code",
	}
	for _, t := range tableB {
		googleTypesTableB[t] = struct{}{}
	}
}

// CategoryMapping resolves an internal category to its search type and
// keyword. Unknown categories return ok=false and are skipped by the
// aggregator.
func CategoryMapping(category string) (googleMapping, bool) {
	m, ok := categoryToGoogle[category]
	return m, ok
}

// specificityOrder resolves a bare Table A match to an internal category when
// none of the requested categories matched directly. Most specific first.
var specificityOrder = []struct {
	gtype    string
	category string
}{
	{"fine_dining_restaurant", "fine_dining"},
	{"fast_food_restaurant", "fast_food"},
	{"mexican_restaurant", "mexican_restaurant"},
	{"italian_restaurant", "italian_restaurant"},
	{"chinese_restaurant", "chinese_restaurant"},
	{"japanese_restaurant", "japanese_restaurant"},
	{"indian_restaurant", "indian_restaurant"},
	{"french_restaurant", "french_restaurant"},
	{"thai_restaurant", "thai_restaurant"},
	{"spanish_restaurant", "spanish_restaurant"},
	{"korean_restaurant", "korean_restaurant"},
	{"vietnamese_restaurant", "vietnamese_restaurant"},
	{"seafood_restaurant", "seafood_restaurant"},
	{"steak_house", "steak_house"},
	{"sushi_restaurant", "sushi_restaurant"},
	{"pizza_restaurant", "pizza_restaurant"},
	{"restaurant", "restaurant"},
	{"night_club", "nightclub"},
	{"wine_bar", "wine_bar"},
	{"pub", "pub"},
	{"bar", "bar"},
	{"coffee_shop", "coffee_shop"},
	{"cafe", "cafe"},
	{"tea_house", "tea_house"},
	{"bakery", "bakery"},
	{"ice_cream_shop", "ice_cream_shop"},
	{"meal_takeaway", "meal_takeaway"},
	{"meal_delivery", "meal_takeaway"},
	{"monument", "monument"},
	{"historical_landmark", "landmark"},
	{"observation_deck", "viewpoint"},
	{"historical_place", "historic_site"},
	{"cultural_landmark", "landmark"},
	{"museum", "museum"},
	{"art_gallery", "art_gallery"},
	{"performing_arts_theater", "theater"},
	{"national_park", "national_park"},
	{"dog_park", "dog_park"},
	{"botanical_garden", "botanical_garden"},
	{"park", "park"},
	{"amusement_park", "amusement_park"},
	{"water_park", "water_park"},
	{"aquarium", "aquarium"},
	{"zoo", "zoo"},
	{"movie_theater", "cinema"},
	{"casino", "casino"},
	{"shopping_mall", "shopping_mall"},
	{"market", "market"},
	{"supermarket", "supermarket"},
	{"store", "store"},
	{"gym", "gym"},
	{"fitness_center", "gym"},
	{"stadium", "stadium"},
	{"hotel", "hotel"},
	{"lodging", "hotel"},
}

// CategoryOther marks a place that matched none of the requested categories.
// Such places are dropped before ranking.
const CategoryOther = "other"

// GuessCategory classifies a place's provider types against the requested
// categories. Requested categories win on a direct Table A type match; bare
// Table A types fall back to the most specific recognized category; Table B
// generics only count when the caller asked for them.
func GuessCategory(providerTypes, desiredCategories []string) string {
	typeSet := make(map[string]struct{}, len(providerTypes))
	tableAMatches := make(map[string]struct{})
	for _, t := range providerTypes {
		typeSet[t] = struct{}{}
		if _, ok := googleTypesTableA[t]; ok {
			tableAMatches[t] = struct{}{}
		}
	}

	if len(tableAMatches) > 0 {
		for _, desired := range desiredCategories {
			mapping, ok := categoryToGoogle[desired]
			if !ok {
				continue
			}
			if _, hit := tableAMatches[mapping.Type]; hit {
				return desired
			}
		}

		for _, entry := range specificityOrder {
			if _, hit := tableAMatches[entry.gtype]; hit {
				return entry.category
			}
		}

		// Any remaining Table A type is at least a recognized place. Walk
		// the provider's own type order so the result is deterministic.
		for _, t := range providerTypes {
			if _, hit := tableAMatches[t]; hit {
				return t
			}
		}
	}

	_, hasAttraction := typeSet["tourist_attraction"]
	_, hasPOI := typeSet["point_of_interest"]
	if hasAttraction || hasPOI {
		for _, desired := range desiredCategories {
			switch desired {
			case "tourist_attraction", "landmark", "viewpoint", "photo_spot", "famous_site":
				return desired
			}
		}
	}

	return CategoryOther
}
