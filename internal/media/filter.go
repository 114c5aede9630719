package media

// Filter narrows the show's episode list in place. An episode is kept when
// its season is in seasons and its (season, episode) pair is in episodes.
// A nil selector places no constraint; an empty non-nil one excludes all.
func Filter(show *TVShow, seasons []int, episodes []EpisodeRef) {
	if show == nil || (seasons == nil && episodes == nil) {
		return
	}

	var seasonSet map[int]struct{}
	if seasons != nil {
		seasonSet = make(map[int]struct{}, len(seasons))
		for _, s := range seasons {
			seasonSet[s] = struct{}{}
		}
	}

	var episodeSet map[EpisodeRef]struct{}
	if episodes != nil {
		episodeSet = make(map[EpisodeRef]struct{}, len(episodes))
		for _, ref := range episodes {
			episodeSet[ref] = struct{}{}
		}
	}

	kept := make([]Episode, 0, len(show.Episodes))
	for _, ep := range show.Episodes {
		if seasonSet != nil {
			if _, ok := seasonSet[ep.Season]; !ok {
				continue
			}
		}
		if episodeSet != nil {
			if _, ok := episodeSet[ep.Ref()]; !ok {
				continue
			}
		}
		kept = append(kept, ep)
	}
	show.Episodes = kept
}
