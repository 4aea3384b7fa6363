// Package onboarding implements the guided interview that collects a new
// user's financial profile. The onboarding agent asks one structured question
// per turn through the ask_question tool and persists the collected data with
// finish_onboarding_and_save_info, flipping the profile's onboarding status
// to completed.
package onboarding
