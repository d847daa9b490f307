package recommend

import "slices"

// catalog order is the tie-break for equal scores.
var catalog = []Course{
	{"Professional Responsibility and Ethics", "Massachusetts CLE", 2.0, "Ethics", "Online", "$50", "https://www.massbar.org/continuing-legal-education"},
	{"Contract Drafting Essentials", "Practising Law Institute", 3.0, "Contract Law", "Self-Paced", "$99", "https://www.pli.edu/programs/contract-drafting"},
	{"Introduction to Legal Technology Tools", "ABA Techshow", 1.5, "Legal Tech", "Online", "Free", "https://www.techshow.com/education"},
	{"Florida Bar Ethics Update 2024", "Florida Bar CLE", 2.5, "Ethics", "Live Webinar", "Free", "https://www.floridabar.org/cle/"},
	{"AI for Legal Professionals", "Stanford CodeX", 2.0, "Legal Tech", "Online", "Free", "https://law.stanford.edu/codex-the-stanford-center-for-legal-informatics/"},
	{"Advanced Contract Negotiation", "Harvard Law School", 3.5, "Contract Law", "Self-Paced", "$150", "https://online-learning.harvard.edu/catalog"},
	{"Data Privacy and GDPR Compliance", "IAPP", 2.0, "Privacy Law", "Online", "$200", "https://iapp.org/store/courses/"},
	{"Legal Writing for Clarity", "Legal Writing Institute", 1.5, "Legal Writing", "Self-Paced", "Free", "https://www.lwionline.org/"},
	{"Business Law Foundations", "Coursera", 4.0, "Business Law", "Self-Paced", "Free", "https://www.coursera.org/courses?query=business%20law"},
	{"Immigration Law Essentials", "AILA", 2.5, "Immigration", "Live Webinar", "$125", "https://www.aila.org/cle"},
	{"Federal Taxation Fundamentals", "NYU School of Law", 3.0, "Tax Law", "Self-Paced", "$175", "https://www.law.nyu.edu/academics/cle"},
	{"Real Estate Transactions", "California Lawyers Association", 2.5, "Real Estate Law", "Online", "$95", "https://calawyers.org/cle/"},
	{"Divorce and Child Custody Essentials", "National Business Institute", 3.0, "Family Law", "Live Webinar", "$149", "https://www.nbi-sems.com/"},
	{"Family Law Practice Fundamentals", "State Bar of Texas", 2.5, "Family Law", "Online", "$125", "https://www.texasbar.com/"},
	{"Bankruptcy Law Basics", "American Bankruptcy Institute", 2.0, "Bankruptcy Law", "Self-Paced", "$150", "https://www.abi.org/"},
	{"Personal Injury Litigation", "National Institute for Trial Advocacy", 3.5, "Personal Injury", "Online", "$200", "https://www.nita.org/"},
	{"Criminal Defense Strategies", "NACDL", 3.0, "Criminal Law", "Live Webinar", "$150", "https://www.nacdl.org/cle/"},
	{"Employment Discrimination Law", "Georgetown Law", 3.5, "Employment Law", "Self-Paced", "$200", "https://www.law.georgetown.edu/continuing-legal-education/"},
	{"Civil Litigation Fundamentals", "American Bar Association", 2.5, "Civil Litigation", "Online", "$125", "https://www.americanbar.org/cle/"},
	{"Intellectual Property Overview", "American Bar Association", 2.5, "IP Law", "Online", "$125", "https://www.americanbar.org/cle/"},
	{"Estate Planning and Wills", "UC Berkeley Extension", 3.0, "Estate Planning", "Online", "$195", "https://extension.berkeley.edu/"},
	{"Healthcare Compliance Essentials", "American Health Law Association", 2.0, "Healthcare Law", "Online", "$175", "https://www.americanbar.org/groups/health_law/"},
	{"Environmental Law Basics", "Environmental Law Institute", 2.5, "Environmental Law", "Self-Paced", "$100", "https://www.eli.org/"},
	{"Cybersecurity for Law Firms", "ILTA", 1.5, "Legal Tech", "Online", "Free", "https://www.iltanet.org/"},
}

// Catalog returns a copy of the built-in course catalog in priority order.
func Catalog() []Course {
	return slices.Clone(catalog)
}
